package positionid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/gomokuengine/pkg/engine"
)

func played(t *testing.T, size int, moves ...engine.Move) *engine.Position {
	t.Helper()
	p, err := engine.EmptyPosition(size, engine.DefaultWinLength, engine.Max)
	require.NoError(t, err)
	for _, m := range moves {
		p, err = p.ApplyMove(m)
		require.NoError(t, err)
	}
	return p
}

func TestPositionIDEmptyBoard(t *testing.T) {
	p := played(t, 3)
	key, err := MakePositionKey(p)
	require.NoError(t, err)

	assert.Equal(t, []byte{Version, 3, 5, 0, 0, 0, 0, 0, 0}, key)
}

func TestPositionIDRoundTrip(t *testing.T) {
	positions := map[string]*engine.Position{
		"empty":     played(t, 15),
		"one stone": played(t, 15, engine.NewMove(7, 7)),
		"several": played(t, 15,
			engine.NewMove(7, 7), engine.NewMove(8, 8),
			engine.NewMove(6, 6), engine.NewMove(8, 7),
		),
		"odd size": played(t, 7, engine.NewMove(3, 3), engine.NewMove(2, 4)),
	}

	for name, p := range positions {
		id, err := PositionID(p)
		require.NoError(t, err, name)

		decoded, err := PositionFromID(id)
		require.NoError(t, err, name)
		assert.True(t, p.Equal(decoded), "%s: %s", name, id)
	}
}

func TestPositionIDDistinguishesMetadata(t *testing.T) {
	board := [][]engine.Cell{
		{engine.Empty, engine.Empty, engine.Empty},
		{engine.Empty, engine.MaxStone, engine.Empty},
		{engine.Empty, engine.Empty, engine.Empty},
	}
	centre := engine.NewMove(1, 1)

	a, err := engine.NewPosition(board, engine.Min, &centre, 3)
	require.NoError(t, err)
	b, err := engine.NewPosition(board, engine.Min, nil, 3)
	require.NoError(t, err)
	c, err := engine.NewPosition(board, engine.Max, &centre, 3)
	require.NoError(t, err)

	ids := map[string]bool{}
	for _, p := range []*engine.Position{a, b, c} {
		id, err := PositionID(p)
		require.NoError(t, err)
		ids[id] = true
	}
	assert.Len(t, ids, 3)
}

func TestPositionFromIDInvalid(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"not base64", "!!!"},
		{"too short", encoding.EncodeToString([]byte{Version, 3})},
		{"wrong version", encoding.EncodeToString([]byte{9, 1, 1, 0, 0, 0, 0})},
		{"wrong length", encoding.EncodeToString([]byte{Version, 3, 3, 0, 0, 0, 0})},
		{"bad cell", encoding.EncodeToString([]byte{Version, 1, 1, 0, 0, 0, 3})},
		{"last move on empty cell", encoding.EncodeToString([]byte{Version, 1, 1, flagHasLast, 0, 0, 0})},
		{"zero size", encoding.EncodeToString([]byte{Version, 0, 5, 0, 0, 0})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PositionFromID(tt.id)
			assert.ErrorIs(t, err, ErrInvalidPositionID)
			assert.ErrorIs(t, err, engine.ErrInvalidArgument)
		})
	}
}

func TestPositionIDRejectsLargeBoards(t *testing.T) {
	p, err := engine.EmptyPosition(MaxSize+1, 5, engine.Max)
	require.NoError(t, err)

	_, err = PositionID(p)
	assert.ErrorIs(t, err, engine.ErrInvalidArgument)
}

func TestParseTextBoard(t *testing.T) {
	last := engine.NewMove(1, 1)
	p, err := ParseTextBoard("...\n.X.\n..O", engine.Max, &last, 3)
	require.NoError(t, err)
	assert.Equal(t, "...\n.X.\n..O\n", p.String())

	slashed, err := ParseTextBoard(".../.X./..O", engine.Max, &last, 3)
	require.NoError(t, err)
	assert.True(t, p.Equal(slashed))

	_, err = ParseTextBoard("..\n.Z", engine.Max, nil, 3)
	assert.ErrorIs(t, err, engine.ErrInvalidArgument)

	_, err = ParseTextBoard("...\n..", engine.Max, nil, 3)
	assert.ErrorIs(t, err, engine.ErrInvalidArgument)
}

func TestIsTextBoard(t *testing.T) {
	id, err := PositionID(played(t, 15, engine.NewMove(7, 7)))
	require.NoError(t, err)

	assert.False(t, IsTextBoard(id))
	assert.True(t, IsTextBoard(".../.X./..."))
	assert.True(t, IsTextBoard("XO\nOX"))
}

func TestParseDetectsFormat(t *testing.T) {
	want := played(t, 5, engine.NewMove(2, 2))
	id, err := PositionID(want)
	require.NoError(t, err)

	fromID, err := Parse(id, engine.Max, nil, 5)
	require.NoError(t, err)
	assert.True(t, want.Equal(fromID))

	last := engine.NewMove(2, 2)
	fromText, err := Parse("...../...../..X../...../.....", engine.Min, &last, 5)
	require.NoError(t, err)
	assert.True(t, want.Equal(fromText))
}
