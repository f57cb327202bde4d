package testroster

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/brianvoe/gofakeit/v6"
	"gopkg.in/yaml.v3"

	"github.com/M3kko/nolimit-dashboard/internal/domain/athlete"
)

// Sports drawn by the generator.
var Sports = []string{
	"Track & Field", "Swimming", "Gymnastics", "Soccer", "Tennis",
	"Basketball", "Rowing", "Cycling",
}

// Generate builds n valid roster records with ids 1..n. The same seed gives
// the same roster.
func Generate(n int, seed int64) []athlete.Record {
	f := gofakeit.New(seed)
	statuses := make([]string, 0, len(athlete.Statuses))
	for _, s := range athlete.Statuses {
		statuses = append(statuses, string(s))
	}

	out := make([]athlete.Record, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, athlete.Record{
			ID:             i,
			Name:           f.FirstName() + " " + f.LastName(),
			Sport:          f.RandomString(Sports),
			WeeklyProgress: f.Number(0, maxProgress),
			Sessions:       f.Number(0, maxSessions),
			Status:         f.RandomString(statuses),
		})
	}
	return out
}

// WriteRoster writes records as a YAML roster file the service can load
// through roster_path.
func WriteRoster(path string, records []athlete.Record) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(struct {
		Athletes []athlete.Record `yaml:"athletes"`
	}{records}); err != nil {
		return fmt.Errorf("encode roster: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode roster: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), filePermission)
}
