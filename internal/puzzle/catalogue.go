// internal/puzzle/catalogue.go
//
// Offline puzzle catalogue: boards with their known solutions, used by the
// in-memory board (offline play and tests).
//
// Loading behavior (Default):
//  1. If PUZZLES_FILE is set, load that YAML file.
//  2. Otherwise fall back to the embedded assets/puzzles.yaml.
//
// Constraints:
//   - Every group has exactly 4 distinct words.
//   - A word appears in only one group of a puzzle.
//   - Words are normalized to upper case.
//   - Default is initialized once (sync.Once).

package puzzle

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/robalobadob/connections-bot/assets"
	"github.com/robalobadob/connections-bot/internal/game"
)

// Group is one solved group of a puzzle.
type Group struct {
	Theme string   `yaml:"theme"`
	Words []string `yaml:"words"`
}

// WordSet returns the group's words in canonical form.
func (g Group) WordSet() game.WordSet { return game.ParseWordSet(g.Words...) }

// Puzzle is a board and its solution.
type Puzzle struct {
	ID     int     `yaml:"id"`
	Groups []Group `yaml:"groups"`
}

// Words returns every word on the board.
func (p Puzzle) Words() game.WordSet {
	out := game.NewWordSet()
	for _, g := range p.Groups {
		for w := range g.WordSet() {
			out[w] = struct{}{}
		}
	}
	return out
}

// Validate checks group sizes and word uniqueness.
func (p Puzzle) Validate() error {
	if len(p.Groups) == 0 {
		return fmt.Errorf("puzzle %d: no groups", p.ID)
	}
	seen := game.NewWordSet()
	for i, g := range p.Groups {
		ws := g.WordSet()
		if len(g.Words) != game.GroupSize || ws.Len() != game.GroupSize {
			return fmt.Errorf("puzzle %d group %d: want %d distinct words, got %d", p.ID, i+1, game.GroupSize, ws.Len())
		}
		for w := range ws {
			if seen.Contains(w) {
				return fmt.Errorf("puzzle %d: word %s appears in more than one group", p.ID, w)
			}
			seen[w] = struct{}{}
		}
	}
	return nil
}

// Catalogue is a set of puzzles keyed by id.
type Catalogue struct {
	byID map[int]Puzzle
}

type catalogueFile struct {
	Puzzles []Puzzle `yaml:"puzzles"`
}

// Parse decodes and validates a YAML catalogue.
func Parse(data []byte) (*Catalogue, error) {
	var f catalogueFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode puzzles: %w", err)
	}
	c := &Catalogue{byID: make(map[int]Puzzle, len(f.Puzzles))}
	for _, p := range f.Puzzles {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate puzzle id %d", p.ID)
		}
		c.byID[p.ID] = p
	}
	if len(c.byID) == 0 {
		return nil, errors.New("puzzles: catalogue is empty")
	}
	return c, nil
}

// Load reads a YAML catalogue file.
func Load(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Get returns the puzzle with the given id.
func (c *Catalogue) Get(id int) (Puzzle, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// IDs returns the puzzle ids in ascending order.
func (c *Catalogue) IDs() []int {
	out := make([]int, 0, len(c.byID))
	for id := range c.byID {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Len returns the number of puzzles.
func (c *Catalogue) Len() int { return len(c.byID) }

var (
	defaultOnce sync.Once
	defaultCat  *Catalogue
	defaultErr  error
)

// Default returns the catalogue from PUZZLES_FILE or the embedded one.
func Default() (*Catalogue, error) {
	defaultOnce.Do(func() {
		if path := os.Getenv("PUZZLES_FILE"); path != "" {
			defaultCat, defaultErr = Load(path)
			return
		}
		data, err := assets.PuzzlesYAML()
		if err != nil {
			defaultErr = err
			return
		}
		defaultCat, defaultErr = Parse(data)
	})
	return defaultCat, defaultErr
}
