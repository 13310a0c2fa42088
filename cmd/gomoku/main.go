// gomoku - command-line front end for the Gomoku rules engine and minimax search
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/gomokuengine/internal/heuristic"
	"github.com/yourusername/gomokuengine/internal/logging"
	"github.com/yourusername/gomokuengine/internal/positionid"
	"github.com/yourusername/gomokuengine/pkg/engine"
	"github.com/yourusername/gomokuengine/pkg/external"
	"github.com/yourusername/gomokuengine/pkg/record"
)

const version = "0.1.0"

// errUsage marks errors that should be followed by the usage text.
var errUsage = errors.New("usage")

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if err := run(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			printUsage(os.Stderr)
		}
		os.Exit(1)
	}
}

func run(command string, args []string, out io.Writer) error {
	switch command {
	case "best":
		return cmdBest(args, out)
	case "analyze":
		return cmdAnalyze(args, out)
	case "legal":
		return cmdLegal(args, out)
	case "eval":
		return cmdEval(args, out)
	case "show":
		return cmdShow(args, out)
	case "replay":
		return cmdReplay(args, out)
	case "brain":
		return cmdBrain(args, os.Stdin, out)
	case "review":
		return cmdReview(args, out)
	case "selfplay":
		return cmdSelfPlay(args, out)
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, command)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `gomoku - Gomoku rules engine and minimax search

Usage: gomoku <command> [options]

Commands:
  best      Find the best move with fixed-depth minimax
  analyze   Score every legal move
  legal     List the legal moves of a position
  eval      Evaluate a position with the heuristic
  show      Print a position and its status
  replay    Replay an SGF game record
  review    Rate every move of an SGF game record
  selfplay  Let the engine play itself and write SGF
  brain     Speak the brain protocol on stdin/stdout

Use "gomoku <command> -h" for command-specific help.

Position Format:
  Either a position ID printed by this tool or a text board with rows of
  '.', 'X' (max) and 'O' (min) separated by '/', e.g. ".../.X./...".
  Text boards take -to-move, -last and -win.`)
}

// positionFlags are shared by every command that reads a position.
type positionFlags struct {
	position *string
	toMove   *string
	last     *string
	win      *int
}

func addPositionFlags(fs *flag.FlagSet) positionFlags {
	return positionFlags{
		position: fs.String("p", "", "Position ID or text board"),
		toMove:   fs.String("to-move", "max", "Player to move for text boards (max or min)"),
		last:     fs.String("last", "", "Last move for text boards as row,col"),
		win:      fs.Int("win", engine.DefaultWinLength, "Stones in a row to win for text boards"),
	}
}

func (f positionFlags) parse() (*engine.Position, error) {
	if *f.position == "" {
		return nil, fmt.Errorf("%w: -p position required", errUsage)
	}
	toMove, err := engine.ParsePlayer(*f.toMove)
	if err != nil {
		return nil, err
	}
	var last *engine.Move
	if *f.last != "" {
		m, err := parseMove(*f.last)
		if err != nil {
			return nil, err
		}
		last = &m
	}
	return positionid.Parse(*f.position, toMove, last, *f.win)
}

// parseMove reads "row,col" or "row-col".
func parseMove(s string) (engine.Move, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		parts = strings.Split(s, "-")
	}
	if len(parts) != 2 {
		return engine.Move{}, fmt.Errorf("move should be in format 'row,col', got %q", s)
	}

	row, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	col, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return engine.Move{}, fmt.Errorf("move coordinates must be integers, got %q", s)
	}
	return engine.NewMove(row, col), nil
}

func createEngine(weightsFile string) (*engine.MinimaxEngine, error) {
	weights := heuristic.DefaultWeights()
	if weightsFile != "" {
		var err error
		weights, err = heuristic.LoadWeights(weightsFile)
		if err != nil {
			return nil, err
		}
	}
	e, err := engine.NewMinimaxEngine(heuristic.NewThreatEvaluator(weights))
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	return e, nil
}

func cmdBest(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("best", flag.ContinueOnError)
	pf := addPositionFlags(fs)
	depth := fs.Int("depth", 2, "Search depth in plies")
	weights := fs.String("weights", "", "Heuristic weights JSON file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := pf.parse()
	if err != nil {
		return err
	}
	e, err := createEngine(*weights)
	if err != nil {
		return err
	}

	result, stats, err := e.FindBestMoveStats(p, *depth)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if !result.HasMove {
		fmt.Fprintf(out, "No move (score %d)\n", result.Score)
	} else {
		fmt.Fprintf(out, "Best move: %v  score %d\n", result.Move, result.Score)
	}
	fmt.Fprintf(out, "  Depth %d, %d nodes, %d evaluations, %d terminals, %v\n",
		*depth, stats.Nodes, stats.Evaluations, stats.Terminals, stats.Elapsed.Round(time.Microsecond))
	return nil
}

func cmdAnalyze(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	pf := addPositionFlags(fs)
	depth := fs.Int("depth", 2, "Search depth in plies")
	numMoves := fs.Int("n", 5, "Number of moves to show (0 = all)")
	weights := fs.String("weights", "", "Heuristic weights JSON file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := pf.parse()
	if err != nil {
		return err
	}
	e, err := createEngine(*weights)
	if err != nil {
		return err
	}

	moves, err := e.RankMoves(p, *depth, *numMoves)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	if len(moves) == 0 {
		fmt.Fprintln(out, "No legal moves")
		return nil
	}

	fmt.Fprintf(out, "Best moves for %s at depth %d:\n", p.ToMove(), *depth)
	for i, m := range moves {
		fmt.Fprintf(out, "  %d. %-8v  %+d\n", i+1, m.Move, m.Score)
	}
	return nil
}

func cmdLegal(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("legal", flag.ContinueOnError)
	pf := addPositionFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := pf.parse()
	if err != nil {
		return err
	}

	moves := p.LegalMoves()
	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = m.String()
	}
	fmt.Fprintf(out, "%d legal moves: %s\n", len(moves), strings.Join(parts, " "))
	return nil
}

func cmdEval(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	pf := addPositionFlags(fs)
	weights := fs.String("weights", "", "Heuristic weights JSON file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := pf.parse()
	if err != nil {
		return err
	}

	if p.IsTerminal() {
		u, err := p.Utility()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Utility: %+d (game over)\n", u)
		return nil
	}

	e, err := createEngine(*weights)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Score: %+d\n", e.Evaluator().Evaluate(p))
	return nil
}

func cmdShow(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	pf := addPositionFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := pf.parse()
	if err != nil {
		return err
	}
	return printPosition(out, p)
}

func printPosition(out io.Writer, p *engine.Position) error {
	id, err := positionid.PositionID(p)
	if err != nil {
		return err
	}

	fmt.Fprint(out, p.String())
	fmt.Fprintf(out, "Position ID: %s\n", id)
	fmt.Fprintf(out, "To move: %s", p.ToMove())
	if last, ok := p.LastMove(); ok {
		fmt.Fprintf(out, "  last move: %v", last)
	}
	fmt.Fprintln(out)

	if p.IsTerminal() {
		if winner, ok := p.Winner(); ok {
			fmt.Fprintf(out, "Game over: %s wins with %v\n", winner, p.WinningLine())
		} else {
			fmt.Fprintln(out, "Game over: draw")
		}
	}
	return nil
}

func cmdReplay(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	file := fs.String("f", "", "SGF file to replay")
	all := fs.Bool("all", false, "Print every position, not just the last")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("%w: -f file required", errUsage)
	}

	f, err := os.Open(*file)
	if err != nil {
		return fmt.Errorf("opening SGF file: %w", err)
	}
	defer f.Close()

	records, err := record.ImportSGF(f)
	if err != nil {
		return err
	}

	for i, rec := range records {
		fmt.Fprintf(out, "Game %d: %s (black) vs %s (white), %d moves\n",
			i+1, rec.Black, rec.White, len(rec.Moves))

		positions, err := rec.Replay()
		if err != nil {
			return fmt.Errorf("game %d: %w", i+1, err)
		}
		shown := positions[len(positions)-1:]
		if *all {
			shown = positions
		}
		for _, p := range shown {
			if err := printPosition(out, p); err != nil {
				return err
			}
		}
	}
	return nil
}

func cmdReview(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("review", flag.ContinueOnError)
	file := fs.String("f", "", "SGF file to review")
	depth := fs.Int("depth", 1, "Search depth in plies for each move")
	weightsFile := fs.String("weights", "", "Heuristic weights JSON file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("%w: -f file required", errUsage)
	}

	f, err := os.Open(*file)
	if err != nil {
		return fmt.Errorf("opening SGF file: %w", err)
	}
	defer f.Close()

	records, err := record.ImportSGF(f)
	if err != nil {
		return err
	}
	e, err := createEngine(*weightsFile)
	if err != nil {
		return err
	}

	for i, rec := range records {
		review, err := record.Review(e, rec, *depth, nil)
		if err != nil {
			return fmt.Errorf("game %d: %w", i+1, err)
		}

		fmt.Fprintf(out, "Game %d at depth %d (%d nodes)\n", i+1, review.Depth, review.Nodes)
		for _, ps := range review.Players {
			fmt.Fprintf(out, "  %-12s moves %3d  loss/move %10.1f  blunders %d  errors %d  doubtful %d\n",
				ps.Name, ps.Moves, ps.LossPerMove, ps.Blunders, ps.Errors, ps.Doubtful)
		}
		for _, d := range review.Errors {
			fmt.Fprintf(out, "  %3d. %s %-8s best %-8s loss %d %s\n",
				d.MoveNumber, d.Player, d.Played, d.Best, d.Loss, d.Skill.Abbr())
		}
	}
	return nil
}

func cmdBrain(args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("brain", flag.ContinueOnError)
	depth := fs.Int("depth", 2, "Search depth in plies")
	win := fs.Int("win", engine.DefaultWinLength, "Stones in a row to win")
	weightsFile := fs.String("weights", "", "Heuristic weights JSON file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := createEngine(*weightsFile)
	if err != nil {
		return err
	}

	opts := external.DefaultServerOptions()
	opts.Depth = *depth
	opts.WinLength = *win
	opts.Version = version
	return external.NewSession(e, opts).Run(in, out)
}

func cmdSelfPlay(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("selfplay", flag.ContinueOnError)
	size := fs.Int("size", 15, "Board size")
	win := fs.Int("win", engine.DefaultWinLength, "Stones in a row to win")
	depth := fs.Int("depth", 2, "Search depth in plies")
	maxMoves := fs.Int("moves", 60, "Stop after this many moves")
	weights := fs.String("weights", "", "Heuristic weights JSON file")
	output := fs.String("o", "", "Write the game as SGF to this file (default stdout)")
	verbose := fs.Bool("v", false, "Log every move")
	if err := fs.Parse(args); err != nil {
		return err
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Config{Level: level})
	if err != nil {
		return err
	}

	e, err := createEngine(*weights)
	if err != nil {
		return err
	}

	rec := record.NewRecord(*size, *win)
	rec.Black = "gomoku"
	rec.White = "gomoku"
	rec.Date = time.Now().Format("2006-01-02")

	p, err := rec.Start()
	if err != nil {
		return err
	}
	for len(rec.Moves) < *maxMoves && !p.IsTerminal() {
		result, err := e.FindBestMove(p, *depth)
		if err != nil {
			return fmt.Errorf("move %d: %w", len(rec.Moves)+1, err)
		}
		if !result.HasMove {
			break
		}
		logger.Debug().
			Int("ply", len(rec.Moves)+1).
			Stringer("player", p.ToMove()).
			Stringer("move", result.Move).
			Int("score", result.Score).
			Msg("move")

		rec.AddMove(p.ToMove(), result.Move)
		if p, err = p.ApplyMove(result.Move); err != nil {
			return err
		}
	}
	rec.Result = record.ResultFor(p)

	w := out
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("creating SGF file: %w", err)
		}
		defer f.Close()
		w = f
	}
	return record.ExportSGF(w, rec)
}
