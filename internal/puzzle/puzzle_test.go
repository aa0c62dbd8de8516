package puzzle

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDForDate(t *testing.T) {
	cases := []struct {
		date time.Time
		want int
	}{
		{time.Date(2023, 6, 12, 0, 0, 0, 0, time.UTC), 1},
		{time.Date(2023, 6, 12, 23, 59, 0, 0, time.UTC), 1},
		{time.Date(2023, 6, 13, 0, 0, 0, 0, time.UTC), 2},
		{time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC), 367},
		{time.Date(2023, 6, 11, 0, 0, 0, 0, time.UTC), 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, IDForDate(c.date), DateKey(c.date))
	}
}

func TestDateForIDRoundTrip(t *testing.T) {
	for _, id := range []int{1, 2, 100, 367, 500} {
		assert.Equal(t, id, IDForDate(DateForID(id)))
	}
	assert.Equal(t, "2023-06-12", DateKey(DateForID(0)))
}

func TestDefaultCatalogue(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, c.IDs())

	p, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, 16, p.Words().Len())
	assert.True(t, p.Words().Contains("FLOUNDER"))
}

func TestParseRejectsBadPuzzles(t *testing.T) {
	cases := map[string]string{
		"short group": `
puzzles:
  - id: 1
    groups:
      - {theme: x, words: [A, B, C]}`,
		"shared word": `
puzzles:
  - id: 1
    groups:
      - {theme: x, words: [A, B, C, D]}
      - {theme: y, words: [a, E, F, G]}`,
		"duplicate id": `
puzzles:
  - id: 1
    groups: [{theme: x, words: [A, B, C, D]}]
  - id: 1
    groups: [{theme: x, words: [A, B, C, D]}]`,
		"empty": `puzzles: []`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.yaml")
	data := `
puzzles:
  - id: 9
    groups:
      - {theme: x, words: [a, b, c, d]}
      - {theme: y, words: [e, f, g, h]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	p, ok := c.Get(9)
	require.True(t, ok)
	assert.Equal(t, 8, p.Words().Len())
	assert.Equal(t, 1, c.Len())
}
