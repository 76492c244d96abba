// file: logger/logger_test.go
package logger

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLogLevel_ProductionDropsDebug(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetLogLevel("development") })

	SetLogLevel("production")
	Debug().Msg("hidden debug line")
	Info().Msg("visible info line")

	assert.NotContains(t, buf.String(), "hidden debug line")
	assert.Contains(t, buf.String(), "visible info line")
}

func TestInitLogger_CreatesLogFile(t *testing.T) {
	dir := t.TempDir()

	err := InitLogger(dir)
	assert.NoError(t, err)

	Info().Msg("written to file")
	entries, err := filepath.Glob(filepath.Join(dir, "*.log"))
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
}

