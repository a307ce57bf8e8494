package tree

import (
	"fmt"
	"io"

	"github.com/awalterschulze/gographviz"
)

// WriteDot renders a bounded subtree rooted at h as Graphviz dot, for
// interactive debugging only — it is never on the search hot path and
// plays no part in the book Save/Load contract. maxNodes <= 0 means
// unbounded.
func (t *Tree) WriteDot(w io.Writer, h Handle, maxNodes int) error {
	g := gographviz.NewGraph()
	if err := g.SetName("tree"); err != nil {
		return err
	}
	if err := g.SetDir(true); err != nil {
		return err
	}

	visited := 0
	var walk func(h Handle) error
	walk = func(h Handle) error {
		if h == NilHandle || (maxNodes > 0 && visited >= maxNodes) {
			return nil
		}
		visited++
		n := t.NodeAt(h)
		label := fmt.Sprintf("\"%d\\np=%d v=%.3f\"", n.Coord.Point, n.MC.Playouts(), n.MC.Value())
		if err := g.AddNode("tree", nodeName(h), map[string]string{"label": label}); err != nil {
			return err
		}
		for c := n.Child; c != NilHandle; c = t.NodeAt(c).Sibling {
			if maxNodes > 0 && visited >= maxNodes {
				break
			}
			if err := walk(c); err != nil {
				return err
			}
			if err := g.AddEdge(nodeName(h), nodeName(c), true, nil); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(h); err != nil {
		return err
	}

	_, err := io.WriteString(w, g.String())
	return err
}

func nodeName(h Handle) string {
	return fmt.Sprintf("\"n%d\"", h)
}
