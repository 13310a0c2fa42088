// Package positionid implements compact position IDs for Gomoku boards.
//
// A position ID is a URL-safe base64 string (no padding) of the bytes
//
//	[version][size][winLength][flags][lastRow][lastCol][cells...]
//
// flags bit 0 is set when Min is to move and bit 1 when a last move is
// recorded. Cells are packed 2 bits each, 4 per byte, in row-major order,
// lowest bits first: 0 empty, 1 Max, 2 Min.
package positionid

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/yourusername/gomokuengine/pkg/engine"
)

const (
	// Version is the encoding version written as the first byte.
	Version = 1
	// MaxSize is the largest board edge an ID can describe.
	MaxSize = 255

	headerLength = 6

	flagMinToMove = 1 << 0
	flagHasLast   = 1 << 1
)

// ErrInvalidPositionID is returned when a position ID cannot be decoded.
// It also matches engine.ErrInvalidArgument.
var ErrInvalidPositionID = fmt.Errorf("%w: invalid position ID", engine.ErrInvalidArgument)

var encoding = base64.RawURLEncoding

// PositionID encodes p. Boards larger than MaxSize cannot be encoded.
func PositionID(p *engine.Position) (string, error) {
	key, err := MakePositionKey(p)
	if err != nil {
		return "", err
	}
	return encoding.EncodeToString(key), nil
}

// MakePositionKey returns the raw bytes behind a position ID.
func MakePositionKey(p *engine.Position) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil position", engine.ErrInvalidArgument)
	}
	size, win := p.Size(), p.WinLength()
	if size > MaxSize || win > MaxSize {
		return nil, fmt.Errorf("%w: %dx%d board with win length %d does not fit a position ID",
			engine.ErrInvalidArgument, size, size, win)
	}

	key := make([]byte, headerLength+packedLength(size))
	key[0] = Version
	key[1] = byte(size)
	key[2] = byte(win)
	if p.ToMove() == engine.Min {
		key[3] |= flagMinToMove
	}
	if last, ok := p.LastMove(); ok {
		key[3] |= flagHasLast
		key[4] = byte(last.Row)
		key[5] = byte(last.Col)
	}

	cells := key[headerLength:]
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			i := row*size + col
			cells[i/4] |= byte(p.At(row, col)) << (2 * (i % 4))
		}
	}
	return key, nil
}

// PositionFromID decodes a position ID produced by PositionID.
func PositionFromID(id string) (*engine.Position, error) {
	key, err := encoding.DecodeString(strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPositionID, err)
	}
	return PositionFromKey(key)
}

// PositionFromKey decodes the raw bytes of a position ID.
func PositionFromKey(key []byte) (*engine.Position, error) {
	if len(key) < headerLength {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrInvalidPositionID, len(key))
	}
	if key[0] != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidPositionID, key[0])
	}

	size, win, flags := int(key[1]), int(key[2]), key[3]
	if len(key) != headerLength+packedLength(size) {
		return nil, fmt.Errorf("%w: %d bytes for a %dx%d board", ErrInvalidPositionID, len(key), size, size)
	}

	cells := key[headerLength:]
	board := make([][]engine.Cell, size)
	for row := range board {
		board[row] = make([]engine.Cell, size)
		for col := range board[row] {
			i := row*size + col
			board[row][col] = engine.Cell((cells[i/4] >> (2 * (i % 4))) & 0x03)
		}
	}

	toMove := engine.Max
	if flags&flagMinToMove != 0 {
		toMove = engine.Min
	}
	var last *engine.Move
	if flags&flagHasLast != 0 {
		m := engine.NewMove(int(key[4]), int(key[5]))
		last = &m
	}

	p, err := engine.NewPosition(board, toMove, last, win)
	if err != nil {
		return nil, errors.Join(ErrInvalidPositionID, err)
	}
	return p, nil
}

// ParseTextBoard builds a position from rows of '.', 'X' and 'O'.
// Rows are separated by '/' or newlines; blank rows are ignored.
func ParseTextBoard(text string, toMove engine.Player, last *engine.Move, winLength int) (*engine.Position, error) {
	rows := strings.FieldsFunc(text, func(r rune) bool {
		return r == '/' || r == '\n' || r == '\r'
	})

	board := make([][]engine.Cell, 0, len(rows))
	for i, row := range rows {
		row = strings.TrimSpace(row)
		if row == "" {
			continue
		}
		line := make([]engine.Cell, 0, len(row))
		for _, ch := range row {
			switch ch {
			case '.', '-', '_':
				line = append(line, engine.Empty)
			case 'X', 'x':
				line = append(line, engine.MaxStone)
			case 'O', 'o':
				line = append(line, engine.MinStone)
			default:
				return nil, fmt.Errorf("%w: unexpected %q in row %d", engine.ErrInvalidArgument, ch, i)
			}
		}
		board = append(board, line)
	}
	return engine.NewPosition(board, toMove, last, winLength)
}

// IsTextBoard reports whether s is a text board rather than a position ID.
// Text boards are recognised by containing '.', '/' or a newline, none of
// which occur in a position ID.
func IsTextBoard(s string) bool {
	return strings.ContainsAny(s, "./\n")
}

// Parse accepts either a position ID or a text board.
// toMove, last and winLength only apply to text boards.
func Parse(s string, toMove engine.Player, last *engine.Move, winLength int) (*engine.Position, error) {
	if IsTextBoard(s) {
		return ParseTextBoard(s, toMove, last, winLength)
	}
	return PositionFromID(s)
}

func packedLength(size int) int {
	return (size*size + 3) / 4
}
