// Command stonetreectl is a manual-testing harness for the search
// engine: it drives search.Engine/Controller over an in-memory
// internal/testboard.Board and prints the result, without speaking any
// text protocol. Its genmove, selfplay and status subcommands exercise
// Engine.Genmove and the configuration parser by hand; NotifyPlay and
// Chat are not reachable from it. It runs the way the teacher's examples/ directory runs its MCTS
// against a concrete game rather than a protocol front end.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/stonetree/engine/board"
	"github.com/stonetree/engine/clock"
	"github.com/stonetree/engine/config"
	"github.com/stonetree/engine/elo"
	"github.com/stonetree/engine/internal/testboard"
	"github.com/stonetree/engine/playout"
	"github.com/stonetree/engine/protocol"
	"github.com/stonetree/engine/search"
	"github.com/stonetree/engine/selection"
	"github.com/stonetree/engine/tree"
)

var (
	output = termenv.NewOutput(os.Stdout)

	flagSize   int
	flagConfig string
	flagMoves  string
	flagQuiet  bool
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, output.String(err.Error()).Foreground(termenv.ANSIRed))
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "stonetreectl",
		Short: "Drive the search engine against an in-memory board",
	}
	root.PersistentFlags().IntVar(&flagSize, "size", 9, "board side length")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "comma-separated key=value engine configuration")
	root.PersistentFlags().StringVar(&flagMoves, "moves", "", "comma-separated point indices to play before searching")
	root.PersistentFlags().BoolVar(&flagQuiet, "quiet", false, "suppress progress output")

	root.AddCommand(genmoveCmd(), selfplayCmd(), statusCmd())
	return root
}

// buildEngine assembles a Controller+Engine pair from the parsed
// configuration string, mirroring what a protocol front end's
// "boardsize"/"stonetree-genmove_analyze" setup sequence would do.
func buildEngine() (*search.Controller, *search.Engine, config.Config, error) {
	cfg, err := config.Parse(flagConfig)
	if err != nil {
		return nil, nil, cfg, err
	}

	var policy selection.Policy
	switch cfg.Policy {
	case "ucb1":
		policy = selection.NewUCB1(0.2)
	default:
		policy = selection.NewUCB1AMAF(0.2, 3500)
	}

	scorer := playout.Scorer(areaCountScorer)

	ctrlCfg := search.DefaultConfig()
	ctrlCfg.Threads = cfg.Threads
	switch cfg.ThreadModel {
	case config.ThreadModelRoot:
		ctrlCfg.Model = search.ThreadModelRoot
	case config.ThreadModelTree:
		ctrlCfg.Model = search.ThreadModelTree
	default:
		ctrlCfg.Model = search.ThreadModelTreeVL
	}
	ctrlCfg.Worker.Model = ctrlCfg.Model
	ctrlCfg.Playout.GameLen = cfg.GameLen
	ctrlCfg.Playout.Mercy = cfg.Mercy
	ctrlCfg.Budget.DesiredPlayouts = int32(1000)
	ctrlCfg.Budget.WorstPlayouts = int32(5000)
	ctrlCfg.Seed = cfg.ForceSeed

	ctrl := search.New(ctrlCfg, policy, scorer, clock.System{})
	ctrl.Reset(tree.Config{FastAlloc: true, Capacity: 1 << 16}, board.Black)

	eloPolicy := elo.New(elo.DefaultConfig(), nil, nil, nil)
	engine := search.NewEngine(ctrl, eloPolicy, nil)
	return ctrl, engine, cfg, nil
}

// areaCountScorer is a placeholder terminal scorer: it declares the
// colour with more stones on the board the winner, with no capture or
// territory accounting. Real scoring belongs to the external rule
// engine (playout.Scorer's doc comment); this exists only so the demo
// CLI has something to run playouts against.
func areaCountScorer(b board.Board) (resultForBlack int, margin int) {
	tb, ok := b.(*testboard.Board)
	if !ok {
		return 0, 0
	}
	black, white := tb.CountStones()
	switch {
	case black > white:
		return 1, black - white
	case white > black:
		return -1, white - black
	default:
		return 0, 0
	}
}

func buildBoard() (*testboard.Board, error) {
	b := testboard.New(flagSize)
	if strings.TrimSpace(flagMoves) == "" {
		return b, nil
	}
	for _, tok := range strings.Split(flagMoves, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		p, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("invalid move point %q: %w", tok, err)
		}
		m := board.Move{Point: board.Point(p), Colour: b.ToMove()}
		if status := b.Play(m); status != board.PlayOK {
			return nil, fmt.Errorf("illegal move at point %d", p)
		}
	}
	return b, nil
}

func genmoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "genmove",
		Short: "Run one search and print the chosen move",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, engine, _, err := buildEngine()
			if err != nil {
				return err
			}
			b, err := buildBoard()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			colour := b.ToMove()
			move, err := engine.Genmove(ctx, b, protocol.TimeInfo{}, colour, false)
			if err != nil {
				return err
			}

			printMove(move, ctrl)
			return nil
		},
	}
}

func selfplayCmd() *cobra.Command {
	var plies int
	cmd := &cobra.Command{
		Use:   "selfplay",
		Short: "Alternate genmove calls against the board until it passes out",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, engine, _, err := buildEngine()
			if err != nil {
				return err
			}
			b, err := buildBoard()
			if err != nil {
				return err
			}

			for i := 0; i < plies; i++ {
				if b.ConsecutivePasses() >= 2 {
					break
				}
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				colour := b.ToMove()
				move, err := engine.Genmove(ctx, b, protocol.TimeInfo{}, colour, false)
				cancel()
				if err != nil {
					return err
				}
				b.Play(move)
				if !flagQuiet {
					printMove(move, ctrl)
				}
			}

			black, white := b.CountStones()
			fmt.Printf("final stones: black=%d white=%d\n", black, white)
			return nil
		},
	}
	cmd.Flags().IntVar(&plies, "plies", 20, "maximum number of genmove/play cycles")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the parsed configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, cfg, err := buildEngine()
			if err != nil {
				return err
			}
			fmt.Printf("%+v\n", cfg)
			return nil
		},
	}
}

func printMove(move board.Move, ctrl *search.Controller) {
	label := fmt.Sprintf("%s plays %d", move.Colour, move.Point)
	style := output.String(label)
	if move.Point == board.Resign {
		style = style.Foreground(termenv.ANSIRed)
	} else if move.Point == board.Pass {
		style = style.Foreground(termenv.ANSIYellow)
	} else {
		style = style.Foreground(termenv.ANSIGreen)
	}
	fmt.Println(style)
	if !flagQuiet {
		fmt.Printf("  collisions=%d games=%d\n", ctrl.Collisions(), ctrl.Games())
	}
}
