package record

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/yourusername/gomokuengine/pkg/engine"
)

// SGF (Smart Game Format) is a standard format for recording games.
// See: https://www.red-bean.com/sgf/
//
// Example SGF:
// (;FF[4]GM[4]AP[gomokuengine:1.0]SZ[15]
//  PB[Player1]PW[Player2]
//  ;B[hh]
//  ;W[ii]
//  ...)
//
// Points are written column first, then row: "ab" is column 0, row 1.
// Letters a-z cover 0-25 and A-Z cover 26-51. WL is a private property
// holding the win length; it is omitted for five in a row.

const (
	// GameGomoku is the SGF GM value for Gomoku and Renju.
	GameGomoku = 4
	// DefaultSize is used when a record carries no SZ property.
	DefaultSize = 15
	// MaxSGFSize is the largest board SGF points can address.
	MaxSGFSize = 52
)

var (
	sgfPropertyRE = regexp.MustCompile(`([A-Z]+)\[([^\]]*)\]`)
)

// ImportSGF reads every game tree in r.
func ImportSGF(r io.Reader) ([]*Record, error) {
	scanner := bufio.NewScanner(r)
	var content strings.Builder

	for scanner.Scan() {
		content.WriteString(scanner.Text())
		content.WriteString("\n")
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading SGF file: %w", err)
	}

	return parseSGF(content.String())
}

// parseSGF parses SGF content into records.
func parseSGF(content string) ([]*Record, error) {
	games := splitSGFGames(content)
	if len(games) == 0 {
		return nil, fmt.Errorf("%w: no SGF game tree found", engine.ErrInvalidArgument)
	}

	records := make([]*Record, 0, len(games))
	for i, gameContent := range games {
		rec, err := parseSGFGame(gameContent)
		if err != nil {
			return nil, fmt.Errorf("parsing game %d: %w", i+1, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// splitSGFGames splits SGF content into individual game trees.
func splitSGFGames(content string) []string {
	var games []string
	depth := 0
	start := -1

	for i, ch := range content {
		if ch == '(' {
			if depth == 0 {
				start = i
			}
			depth++
		} else if ch == ')' {
			depth--
			if depth == 0 && start >= 0 {
				games = append(games, content[start:i+1])
				start = -1
			}
		}
	}

	return games
}

// parseSGFProperties extracts all properties from SGF content.
func parseSGFProperties(content string) map[string]string {
	props := make(map[string]string)

	matches := sgfPropertyRE.FindAllStringSubmatch(content, -1)
	for _, m := range matches {
		if len(m) >= 3 {
			props[m[1]] = m[2]
		}
	}

	return props
}

// parseSGFGame parses a single SGF game tree.
func parseSGFGame(content string) (*Record, error) {
	// Split into nodes (separated by ';')
	nodes := strings.Split(content, ";")
	if len(nodes) < 2 {
		return nil, fmt.Errorf("%w: game tree has no root node", engine.ErrInvalidArgument)
	}

	rec, err := parseRootNode(nodes[1])
	if err != nil {
		return nil, err
	}

	for i, node := range nodes[2:] {
		if err := parseSGFNode(node, rec); err != nil {
			return nil, fmt.Errorf("node %d: %w", i+1, err)
		}
	}

	return rec, nil
}

// parseRootNode reads the game-level properties.
func parseRootNode(node string) (*Record, error) {
	props := parseSGFProperties(node)

	if gm, ok := props["GM"]; ok && gm != strconv.Itoa(GameGomoku) {
		return nil, fmt.Errorf("%w: unsupported game type GM[%s]", engine.ErrInvalidArgument, gm)
	}

	size := DefaultSize
	if sz, ok := props["SZ"]; ok {
		// Rectangular boards are written "cols:rows"
		if cols, rows, found := strings.Cut(sz, ":"); found && cols != rows {
			return nil, fmt.Errorf("%w: board must be square, got SZ[%s]", engine.ErrInvalidArgument, sz)
		} else if found {
			sz = cols
		}
		n, err := strconv.Atoi(sz)
		if err != nil || n < 1 || n > MaxSGFSize {
			return nil, fmt.Errorf("%w: invalid board size SZ[%s]", engine.ErrInvalidArgument, sz)
		}
		size = n
	}

	winLength := engine.DefaultWinLength
	if wl, ok := props["WL"]; ok {
		n, err := strconv.Atoi(wl)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: invalid win length WL[%s]", engine.ErrInvalidArgument, wl)
		}
		winLength = n
	}

	rec := NewRecord(size, winLength)
	rec.Black = props["PB"]
	rec.White = props["PW"]
	rec.Date = props["DT"]
	rec.Event = props["EV"]
	rec.Place = props["PC"]
	rec.Result = props["RE"]
	rec.Comment = props["GC"]

	// Some writers put the first move in the root node
	return rec, parseSGFNode(node, rec)
}

// parseSGFNode parses a single SGF node and adds its move to the record.
func parseSGFNode(node string, rec *Record) error {
	props := parseSGFProperties(node)

	for _, color := range [2]struct {
		prop   string
		player engine.Player
	}{{"B", engine.Max}, {"W", engine.Min}} {
		point, ok := props[color.prop]
		if !ok {
			continue
		}
		m, err := parseSGFPoint(point, rec.Size)
		if err != nil {
			return err
		}
		rec.AddMove(color.player, m)
	}

	return nil
}

// parseSGFPoint converts SGF point notation ("hh") to a move.
func parseSGFPoint(point string, size int) (engine.Move, error) {
	if len(point) != 2 {
		return engine.Move{}, fmt.Errorf("%w: invalid SGF point %q", engine.ErrInvalidArgument, point)
	}
	col := sgfCoordToInt(point[0])
	row := sgfCoordToInt(point[1])
	m := engine.NewMove(row, col)
	if col < 0 || row < 0 || !m.InBounds(size) {
		return engine.Move{}, fmt.Errorf("%w: SGF point %q is off the %dx%d board",
			engine.ErrInvalidArgument, point, size, size)
	}
	return m, nil
}

// sgfCoordToInt converts a single SGF coordinate letter to a 0-based index.
func sgfCoordToInt(ch byte) int {
	switch {
	case ch >= 'a' && ch <= 'z':
		return int(ch - 'a')
	case ch >= 'A' && ch <= 'Z':
		return int(ch-'A') + 26
	}
	return -1
}

// intToSGFCoord converts a 0-based index to an SGF coordinate letter.
func intToSGFCoord(i int) byte {
	if i < 26 {
		return byte('a' + i)
	}
	return byte('A' + i - 26)
}

// FormatSGFPoint returns the SGF notation of m.
func FormatSGFPoint(m engine.Move) string {
	return string([]byte{intToSGFCoord(m.Col), intToSGFCoord(m.Row)})
}

// ExportSGF writes records as a collection of SGF game trees.
func ExportSGF(w io.Writer, records ...*Record) error {
	bw := bufio.NewWriter(w)
	for i, rec := range records {
		if err := exportGameSGF(bw, rec); err != nil {
			return fmt.Errorf("exporting game %d: %w", i+1, err)
		}
	}
	return bw.Flush()
}

// exportGameSGF writes a single game in SGF format.
func exportGameSGF(w io.Writer, rec *Record) error {
	if rec.Size < 1 || rec.Size > MaxSGFSize {
		return fmt.Errorf("%w: board size %d cannot be written as SGF", engine.ErrInvalidArgument, rec.Size)
	}

	// Write game tree header
	fmt.Fprintf(w, "(;FF[4]GM[%d]CA[UTF-8]AP[gomokuengine:1.0]SZ[%d]\n", GameGomoku, rec.Size)
	if rec.WinLength != engine.DefaultWinLength {
		fmt.Fprintf(w, "WL[%d]\n", rec.WinLength)
	}

	// Write player names
	fmt.Fprintf(w, "PB[%s]PW[%s]\n", escapeSGF(rec.Black), escapeSGF(rec.White))

	optional := []struct{ prop, value string }{
		{"DT", rec.Date},
		{"EV", rec.Event},
		{"PC", rec.Place},
		{"RE", rec.Result},
		{"GC", rec.Comment},
	}
	for _, o := range optional {
		if o.value != "" {
			fmt.Fprintf(w, "%s[%s]\n", o.prop, escapeSGF(o.value))
		}
	}

	// Write moves
	for _, play := range rec.Moves {
		if !play.Move.InBounds(rec.Size) {
			return fmt.Errorf("%w: move %v is off the board", engine.ErrInvalidArgument, play.Move)
		}
		color := "B"
		if play.Player == engine.Min {
			color = "W"
		}
		fmt.Fprintf(w, ";%s[%s]\n", color, FormatSGFPoint(play.Move))
	}

	// Close game tree
	_, err := fmt.Fprintf(w, ")\n")
	return err
}

// escapeSGF strips characters the simple property reader cannot round-trip.
func escapeSGF(s string) string {
	return strings.NewReplacer("]", "", "(", "", ")", "", ";", ",").Replace(s)
}
