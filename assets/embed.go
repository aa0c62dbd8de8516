package assets

import (
	"embed"
	"io/fs"
	"sort"
)

//go:embed puzzles.yaml sql/*.sql
var FS embed.FS

// PuzzlesYAML returns the embedded offline puzzle catalogue.
func PuzzlesYAML() ([]byte, error) {
	return FS.ReadFile("puzzles.yaml")
}

// Migration is one embedded SQL script.
type Migration struct {
	Name string
	SQL  string
}

// Migrations returns the embedded sql/*.sql scripts in lexical order.
func Migrations() ([]Migration, error) {
	names, err := fs.Glob(FS, "sql/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	out := make([]Migration, 0, len(names))
	for _, n := range names {
		b, err := FS.ReadFile(n)
		if err != nil {
			return nil, err
		}
		out = append(out, Migration{Name: n, SQL: string(b)})
	}
	return out, nil
}
