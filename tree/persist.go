package tree

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/stonetree/engine/board"
)

// Save writes the tree as the opening-book text format of spec.md §6:
// a header line with the root coord and colour, then pre-order lines
// "depth coord playouts value amaf_playouts amaf_value". No pack
// example targets this fixed six-column line format, so this is
// hand-written against bufio/fmt rather than adapted from a
// serialization library (see DESIGN.md).
func (t *Tree) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%d %d\n", t.NodeAt(t.root).Coord.Point, t.rootColour); err != nil {
		return errors.Wrap(err, "tree: save header")
	}
	if err := saveNode(bw, t, t.root); err != nil {
		return errors.Wrap(err, "tree: save body")
	}
	return bw.Flush()
}

func saveNode(w *bufio.Writer, t *Tree, h Handle) error {
	n := t.NodeAt(h)
	_, err := fmt.Fprintf(w, "%d %d %d %.6f %d %.6f\n",
		n.Depth, n.Coord.Point, n.MC.Playouts(), n.MC.Value(), n.AMAF.Playouts(), n.AMAF.Value())
	if err != nil {
		return err
	}
	for c := n.Child; c != NilHandle; c = t.NodeAt(c).Sibling {
		if err := saveNode(w, t, c); err != nil {
			return err
		}
	}
	return nil
}

// savedNode is the flat, order-preserving representation Load parses
// a line into before rebuilding parent/child links from the depth
// column (a pre-order walk: a line's parent is the most recent
// preceding line with depth - 1).
type savedNode struct {
	depth        int
	coord        board.Point
	playouts     int32
	value        float64
	amafPlayouts int32
	amafValue    float64
}

// Load rebuilds a tree from the text format Save produces. The
// rebuilt tree always uses the default (growable, non-fast-alloc)
// arena; callers that want a fast-alloc tree should copy nodes into
// one of their own after Load.
func Load(r io.Reader) (*Tree, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		return nil, errors.New("tree: load: empty input")
	}
	header := strings.Fields(sc.Text())
	if len(header) != 2 {
		return nil, errors.Errorf("tree: load: malformed header %q", sc.Text())
	}
	rootPoint, err := strconv.Atoi(header[0])
	if err != nil {
		return nil, errors.Wrap(err, "tree: load: header coord")
	}
	colour, err := strconv.Atoi(header[1])
	if err != nil {
		return nil, errors.Wrap(err, "tree: load: header colour")
	}

	var flat []savedNode
	for sc.Scan() {
		line := strings.Fields(sc.Text())
		if len(line) != 6 {
			return nil, errors.Errorf("tree: load: malformed line %q", sc.Text())
		}
		row, err := parseRow(line)
		if err != nil {
			return nil, err
		}
		flat = append(flat, row)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "tree: load: scan")
	}
	if len(flat) == 0 {
		return nil, errors.New("tree: load: no nodes")
	}

	t := New(Config{}, board.Colour(colour))
	root := t.NodeAt(t.root)
	root.Coord = board.Move{Point: board.Point(rootPoint), Colour: board.Colour(colour)}
	applyRow(root, flat[0])

	// parents[d] is the handle of the most recently seen node at
	// depth d; a new line at depth d+1 attaches under parents[d].
	parents := map[int]Handle{flat[0].depth: t.root}
	tails := map[int]Handle{} // last child appended at each parent, for sibling ordering

	for _, row := range flat[1:] {
		parentDepth := row.depth - 1
		parent, ok := parents[parentDepth]
		if !ok {
			return nil, errors.Errorf("tree: load: no parent at depth %d for node at depth %d", parentDepth, row.depth)
		}
		h, _ := t.alloc()
		n := t.NodeAt(h)
		n.Parent = parent
		n.Depth = int16(row.depth)
		n.Coord = board.Move{Point: row.coord}
		applyRow(n, row)
		t.size.Add(1)

		pn := t.NodeAt(parent)
		if tail, ok := tails[int(parent)]; ok {
			t.NodeAt(tail).Sibling = h
		} else {
			pn.Child = h
		}
		tails[int(parent)] = h
		pn.FinishExpand()

		parents[row.depth] = h
	}

	return t, nil
}

func parseRow(fields []string) (savedNode, error) {
	var row savedNode
	var err error
	if row.depth, err = strconv.Atoi(fields[0]); err != nil {
		return row, errors.Wrap(err, "depth")
	}
	p, err := strconv.Atoi(fields[1])
	if err != nil {
		return row, errors.Wrap(err, "coord")
	}
	row.coord = board.Point(p)
	pl, err := strconv.Atoi(fields[2])
	if err != nil {
		return row, errors.Wrap(err, "playouts")
	}
	row.playouts = int32(pl)
	if row.value, err = strconv.ParseFloat(fields[3], 64); err != nil {
		return row, errors.Wrap(err, "value")
	}
	apl, err := strconv.Atoi(fields[4])
	if err != nil {
		return row, errors.Wrap(err, "amaf_playouts")
	}
	row.amafPlayouts = int32(apl)
	if row.amafValue, err = strconv.ParseFloat(fields[5], 64); err != nil {
		return row, errors.Wrap(err, "amaf_value")
	}
	return row, nil
}

func applyRow(n *Node, row savedNode) {
	n.MC.Set(row.playouts, row.value)
	n.AMAF.Set(row.amafPlayouts, row.amafValue)
}
