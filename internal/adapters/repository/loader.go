package repository

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/M3kko/nolimit-dashboard/internal/domain/athlete"
	"github.com/M3kko/nolimit-dashboard/pkg/logger"
	"github.com/M3kko/nolimit-dashboard/pkg/metrics"
)

//go:embed fixtures/roster.yaml
var defaultRoster []byte

// rosterFile is the on-disk layout shared by every format.
type rosterFile struct {
	Athletes []athlete.Record `json:"athletes" yaml:"athletes" toml:"athletes"`
}

// Format of a roster file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrRosterFormat, filepath.Ext(path))
	}
}

// DecodeRecords parses roster records in the given format.
func DecodeRecords(data []byte, f Format) ([]athlete.Record, error) {
	var rf rosterFile
	var err error
	switch f {
	case FormatYAML:
		err = yaml.Unmarshal(data, &rf)
	case FormatTOML:
		_, err = toml.NewDecoder(bytes.NewReader(data)).Decode(&rf)
	case FormatJSON:
		err = json.Unmarshal(data, &rf)
	default:
		return nil, fmt.Errorf("%w: %q", ErrRosterFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrInvalidRoster, f, err)
	}
	return rf.Athletes, nil
}

// ReadRecords reads roster records from path. An empty path yields the
// bundled demo roster.
func ReadRecords(path string) ([]athlete.Record, error) {
	if path == "" {
		return DecodeRecords(defaultRoster, FormatYAML)
	}
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // operator supplied path
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", path, err)
	}
	return DecodeRecords(data, f)
}

// Admit converts records into athletes. In strict mode any rejected record
// fails the whole load; otherwise rejected records are logged and skipped.
func Admit(ctx context.Context, records []athlete.Record, sports athlete.Sports, strict bool) ([]athlete.Athlete, error) {
	roster, err := athlete.Convert(records, sports)
	if err == nil {
		return roster, nil
	}

	rejected := multierr.Errors(err)
	metrics.RecordRosterRejected(len(rejected))
	if strict {
		return nil, fmt.Errorf("%w: %d record(s) rejected: %w", ErrInvalidRoster, len(rejected), err)
	}
	log := logger.Get().Named("roster")
	for _, e := range rejected {
		log.Warn(ctx, "roster record skipped", logger.Error(e))
	}
	return roster, nil
}

// LoadRoster reads, admits and stores a roster in one step.
func LoadRoster(ctx context.Context, path string, sports athlete.Sports, strict bool) (*Roster, error) {
	records, err := ReadRecords(path)
	if err != nil {
		return nil, err
	}
	roster, err := Admit(ctx, records, sports, strict)
	if err != nil {
		return nil, err
	}
	return NewRoster(roster)
}
