package common

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"atscore/internal/config"
	"atscore/internal/document"
	"atscore/internal/errors"
	"atscore/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleOutputStdout(t *testing.T) {
	var buf bytes.Buffer
	oh := NewOutputHandlerTo(nil, &buf)

	scores := types.Scores{Semantic: 80, Keyword: 60, Final: 70}
	require.NoError(t, oh.HandleOutput(scores, CommandConfig{OutputFormat: "text"}))
	assert.Contains(t, buf.String(), "Final ATS Score")
	assert.Contains(t, buf.String(), "70.00/100")
}

func TestHandleOutputFile(t *testing.T) {
	oh := NewOutputHandlerTo(nil, &bytes.Buffer{})
	path := filepath.Join(t.TempDir(), "nested", "scores.json")

	require.NoError(t, oh.HandleOutput(types.Scores{Final: 42}, CommandConfig{OutputFile: path, OutputFormat: "json"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"final": 42`)
}

func TestHandleOutputUnknownFormat(t *testing.T) {
	oh := NewOutputHandlerTo(nil, &bytes.Buffer{})
	err := oh.HandleOutput(types.Scores{}, CommandConfig{OutputFormat: "xml"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestHandleBinary(t *testing.T) {
	var buf bytes.Buffer
	oh := NewOutputHandlerTo(nil, &buf)

	require.NoError(t, oh.HandleBinary([]byte("%PDF-1.3"), ""))
	assert.Equal(t, "%PDF-1.3", buf.String())

	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, oh.HandleBinary([]byte("%PDF-1.3"), path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3", string(data))
}

func TestRunScoringCommand(t *testing.T) {
	dir := t.TempDir()
	resume := filepath.Join(dir, "resume.txt")
	jd := filepath.Join(dir, "jd.txt")
	require.NoError(t, os.WriteFile(resume, []byte("Go developer"), 0o600))
	require.NoError(t, os.WriteFile(jd, []byte("Hiring Go engineers"), 0o600))
	out := filepath.Join(dir, "out.json")

	reader := document.NewReader(config.DocumentConfig{}, 1024, nil)
	var logged int
	err := RunScoringCommand(context.Background(), errors.Discard(), reader,
		CommandConfig{OutputFile: out, OutputFormat: "json"},
		[]string{resume, jd},
		func(_ context.Context, docs []string) (map[string]int, error) {
			return map[string]int{"resume": len(docs[0]), "jd": len(docs[1])}, nil
		},
		func(docs []string, _ CommandConfig) { logged = len(docs) },
	)
	require.NoError(t, err)
	assert.Equal(t, 2, logged)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"jd": 19`))
	assert.True(t, strings.Contains(string(data), `"resume": 12`))
}

func TestRunScoringCommandMissingFile(t *testing.T) {
	reader := document.NewReader(config.DocumentConfig{}, 1024, nil)
	err := RunScoringCommand(context.Background(), errors.Discard(), reader,
		CommandConfig{OutputFormat: "json"},
		[]string{filepath.Join(t.TempDir(), "missing.txt")},
		func(context.Context, []string) (int, error) { return 0, nil },
		nil,
	)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFileNotFound, errors.CodeOf(err))
}
