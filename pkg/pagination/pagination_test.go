package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTripIsURLSafe(t *testing.T) {
	in := Cursor{CreatedAt: time.Date(2026, 10, 19, 8, 30, 0, 123456789, time.UTC), ID: uuid.New()}
	token := EncodeCursor(in)
	require.NotContains(t, token, "+")
	require.NotContains(t, token, "/")
	require.NotContains(t, token, "=")

	out, err := ParseCursor(token)
	require.NoError(t, err)
	require.True(t, in.CreatedAt.Equal(out.CreatedAt))
	require.Equal(t, in.ID, out.ID)
}

func TestParseCursorEmptyAndInvalid(t *testing.T) {
	got, err := ParseCursor("  ")
	require.NoError(t, err)
	require.Nil(t, got)

	for _, bad := range []string{"%%%", EncodeCursor(Cursor{})[:4], "bm8tc2VwYXJhdG9y"} {
		_, err := ParseCursor(bad)
		require.Error(t, err, bad)
	}
}

func TestNormalizeLimit(t *testing.T) {
	require.Equal(t, DefaultLimit, NormalizeLimit(0))
	require.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+1))
	require.Equal(t, 7, NormalizeLimit(7))
	require.Equal(t, 8, LimitWithBuffer(7))
}

func TestTrim(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]Cursor, 4)
	for i := range rows {
		rows[i] = Cursor{CreatedAt: base.Add(-time.Duration(i) * time.Minute), ID: uuid.New()}
	}
	self := func(c Cursor) Cursor { return c }

	page, next := Trim(rows, 3, self)
	require.Len(t, page, 3)
	require.Equal(t, EncodeCursor(rows[2]), next)

	page, next = Trim(rows[:3], 3, self)
	require.Len(t, page, 3)
	require.Empty(t, next)
}
