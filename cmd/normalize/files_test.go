package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/contacts/internal/config"
	"github.com/JonMunkholm/contacts/internal/core"
	"github.com/JonMunkholm/contacts/internal/phone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNormalizer(t *testing.T) *core.Normalizer {
	t.Helper()
	parser, err := phone.New("BR")
	require.NoError(t, err)
	return core.NewNormalizer(parser, "BR", core.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func writeInput(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNormalizeFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.NormalizeConfig{
		InputPath:   writeInput(t, dir, "eid,phone,email work\n1,123,a@b.com\n1,11987654321,\n"),
		OutputPath:  filepath.Join(dir, "output.json"),
		RejectsPath: filepath.Join(dir, "rejects.csv"),
	}

	res, err := normalizeFile(cfg, testNormalizer(t))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.Records)

	out, err := os.ReadFile(cfg.OutputPath)
	require.NoError(t, err)
	assert.Equal(t,
		`[{"groups":[],"addresses":[{"type":"email","tags":["work"],"address":"a@b.com"},{"type":"phone","tags":[],"address":"5511987654321"}],"eid":"1"}]`+"\n",
		string(out))

	rejects, err := os.ReadFile(cfg.RejectsPath)
	require.NoError(t, err)
	assert.Equal(t, "line,eid,column,type,value\n2,1,phone,phone,123\n", string(rejects))
}

func TestNormalizeFile_InvalidHeaderKeepsOutput(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "output.json")
	require.NoError(t, os.WriteFile(output, []byte("previous"), 0o644))

	cfg := config.NormalizeConfig{
		InputPath:  writeInput(t, dir, "name\nAna\n"),
		OutputPath: output,
	}

	_, err := normalizeFile(cfg, testNormalizer(t))
	var cfgErr *core.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)

	got, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(got))
}

func TestNormalizeFile_MissingInput(t *testing.T) {
	dir := t.TempDir()
	cfg := config.NormalizeConfig{
		InputPath:  filepath.Join(dir, "missing.csv"),
		OutputPath: filepath.Join(dir, "output.json"),
	}

	_, err := normalizeFile(cfg, testNormalizer(t))
	require.Error(t, err)
	assert.Equal(t, "FILE003", core.MapError(err).Code)

	_, statErr := os.Stat(cfg.OutputPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteAtomic_FailureLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	err := writeAtomic(path, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return io.ErrUnexpectedEOF
	})
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteRejections_Quoting(t *testing.T) {
	var b strings.Builder
	require.NoError(t, writeRejections(&b, []core.Rejection{
		{Line: 4, IdentityKey: "7", Column: "email", Kind: core.AddressEmail, Value: `x, "y"`},
	}))
	assert.Equal(t, "line,eid,column,type,value\n4,7,email,email,\"x, \"\"y\"\"\"\n", b.String())
}
