package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	id := uuid.New()

	encoded := EncodeCursor(Cursor{CreatedAt: now, ID: id})
	parsed, err := ParseCursor(encoded)
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.True(t, parsed.CreatedAt.Equal(now))
	assert.Equal(t, id, parsed.ID)
}

func TestParseCursorEmpty(t *testing.T) {
	parsed, err := ParseCursor("   ")
	require.NoError(t, err)
	assert.Nil(t, parsed)
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	_, err := ParseCursor("not-base64!!")
	assert.Error(t, err)
}

func TestPageTrimsAndEncodesNextCursor(t *testing.T) {
	type row struct {
		at time.Time
		id uuid.UUID
	}
	rows := make([]row, 4)
	for i := range rows {
		rows[i] = row{at: time.Now().Add(time.Duration(-i) * time.Minute), id: uuid.New()}
	}

	page, next := Page(rows, 3, func(r row) Cursor {
		return Cursor{CreatedAt: r.at, ID: r.id}
	})
	require.Len(t, page, 3)
	require.NotEmpty(t, next)

	parsed, err := ParseCursor(next)
	require.NoError(t, err)
	assert.Equal(t, rows[2].id, parsed.ID)

	page, next = Page(rows[:2], 3, func(r row) Cursor {
		return Cursor{CreatedAt: r.at, ID: r.id}
	})
	assert.Len(t, page, 2)
	assert.Empty(t, next)
}
