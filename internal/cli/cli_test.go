package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestOverview(t *testing.T) {
	out, err := execute(t, "overview", "--format", "json")
	require.NoError(t, err)

	var got struct {
		HasData bool `json:"has_data"`
		Totals  struct {
			TotalAthletes int `json:"total_athletes"`
		} `json:"totals"`
		Attention []struct {
			ID int `json:"id"`
		} `json:"attention"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.HasData)
	assert.Equal(t, 7, got.Totals.TotalAthletes)
	assert.Len(t, got.Attention, 2)
}

func TestAthletes(t *testing.T) {
	out, err := execute(t, "athletes", "--sport", "swimming", "--sort", "progress")
	require.NoError(t, err)

	var rows []struct {
		ID            int    `yaml:"id"`
		Name          string `yaml:"name"`
		ProgressLevel string `yaml:"progress_level"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Natalie Chen", rows[0].Name)
	assert.Equal(t, 7, rows[1].ID)
	assert.NotEmpty(t, rows[0].ProgressLevel)

	_, err = execute(t, "athletes", "--sort", "age")
	assert.Error(t, err)

	_, err = execute(t, "athletes", "--status", "retired")
	assert.Error(t, err)
}

func TestHistory(t *testing.T) {
	out, err := execute(t, "history", "4", "--range", "7d", "--format", "json")
	require.NoError(t, err)

	var got struct {
		Range  string            `json:"range"`
		Daily  []json.RawMessage `json:"daily"`
		Weekly []json.RawMessage `json:"weekly"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "7d", got.Range)
	assert.Len(t, got.Daily, 7)
	assert.Len(t, got.Weekly, 8)

	_, err = execute(t, "history", "4", "--range", "90d")
	assert.Error(t, err)

	_, err = execute(t, "history", "3")
	assert.Error(t, err)

	_, err = execute(t, "history", "abc")
	assert.Error(t, err)
}

func TestReport(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "report", "6", "--range", "14d", "--note", "Cleared for full training.", "--out", dir, "--format", "json")
	require.NoError(t, err)

	var got reportOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, dir, filepath.Dir(got.File))
	assert.Contains(t, filepath.Base(got.File), "emma_davis_medical_report_")
	assert.GreaterOrEqual(t, got.Pages, 1)

	data, err := os.ReadFile(got.File)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Len(t, data, got.Bytes)
}

func TestGlobalFlags(t *testing.T) {
	_, err := execute(t, "overview", "--format", "xml")
	assert.Error(t, err)

	_, err = execute(t, "overview", "--renderer", "canvas")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "roster.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"athletes":[{"id":1,"name":"Ada Park","sport":"Rowing","weekly_progress":70,"sessions":5,"status":"active"}]}`), 0o600))
	out, err := execute(t, "athletes", "--roster", path, "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada Park")
}
