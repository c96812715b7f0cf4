package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig points the engine and the primary store at memory-only backends.
func writeConfig(t *testing.T, engine string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(engine), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "marketindex dev"), out)

	out, err = run(t, "version", "--json")
	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "dev", info["version"])
}

func TestProvision_Bleve(t *testing.T) {
	cfg := writeConfig(t, "engine:\n  driver: bleve\n")
	out, err := run(t, "provision", "--env", "test", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "marketplace:classifieds:category\nmarketplace:classifieds:item\nmarketplace:classifieds:location\n", out)
}

func TestProvision_UnreachableFails(t *testing.T) {
	cfg := writeConfig(t, "engine:\n  driver: redis\n  addrs: [\"127.0.0.1:1\"]\n  readiness_timeout_sec: 1\n")
	_, err := run(t, "provision", "--env", "test", "--config", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search engine unavailable")
}

func TestSearch_EmptyIndex(t *testing.T) {
	cfg := writeConfig(t, "engine:\n  driver: bleve\n")
	out, err := run(t, "search", "item", "bicycle", "--category", "c1", "--env", "test", "--config", cfg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ids":[],"total":0}`, out)
}

func TestSearch_InvalidSort(t *testing.T) {
	cfg := writeConfig(t, "engine:\n  driver: bleve\n")
	_, err := run(t, "search", "item", "--sort", "price_asc", "--env", "test", "--config", cfg)
	assert.ErrorContains(t, err, "price_asc")
}

func TestBadConfig(t *testing.T) {
	cfg := writeConfig(t, "engine:\n  driver: solr\n")
	_, err := run(t, "search", "item", "--env", "test", "--config", cfg)
	assert.ErrorContains(t, err, "load config")
}
