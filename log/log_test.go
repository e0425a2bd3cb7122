package log

import (
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLog(t *testing.T) {
	dir := t.TempDir()
	SetPath(dir)
	DisableStdout()
	require.NoError(t, InitLog("wordtrie_test"))
	DisableStdout()

	err := errors.New("Dictionary Add error")
	log.Error().Stack().Err(err).Str("word", "fox").Msg("LogTest")
	Stop()

	data, err := os.ReadFile(logwrite.fileName())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"LogTest"`)
	assert.Contains(t, string(data), `"word":"fox"`)
	assert.Contains(t, string(data), `"stack"`)
}

func TestSetPath(t *testing.T) {
	old := logwrite.path
	defer func() { logwrite.path = old }()

	SetPath("/tmp/logs")
	assert.Equal(t, "/tmp/logs/", logwrite.path)
	SetPath("/tmp/logs/")
	assert.Equal(t, "/tmp/logs/", logwrite.path)
}

func BenchmarkLog(b *testing.B) {
	SetPath(b.TempDir())
	DisableStdout()
	InitLog("bench")
	DisableStdout()
	defer Stop()
	for i := 0; i < b.N; i++ {
		log.Info().Str("word", "fox").Int("end", 18).Msg("BenchmarkLog")
	}
}
