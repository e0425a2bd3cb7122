package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppConfigDefault(t *testing.T) {
	var conf AppConfig
	conf.Create()
	assert.Equal(t, 8080, conf.Port)
	assert.Equal(t, "filter.json", conf.FilterFile)
	assert.Equal(t, "@every 60s", conf.RedisSyncSpec)
}

func TestScanOnce(t *testing.T) {
	dir := t.TempDir()
	filterFile := filepath.Join(dir, "filter.json")
	appFile := filepath.Join(dir, "app.json")
	require.NoError(t, os.WriteFile(filterFile, []byte(`{"groups":[{"name":"animals","words":["fox"]}]}`), 0644))
	require.NoError(t, os.WriteFile(appFile, []byte(`{"filterfile":"`+filterFile+`"}`), 0644))

	assert.Equal(t, 0, scanOnce(appFile, "the brown fox"))
	assert.Equal(t, 1, scanOnce(filepath.Join(dir, "none.json"), "fox"))
}
