package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOutput_Prefixes(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)

	Info.Println("hello")
	Warn.Println("careful")

	assert.Contains(t, buf.String(), "INFO: ")
	assert.Contains(t, buf.String(), "WARN: ")
}

func TestSetLogLevel_ProductionDiscardsDebug(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)

	SetLogLevel("production")
	Debug.Println("hidden")
	Info.Println("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestInitLogger_WritesFile(t *testing.T) {
	dir := t.TempDir()
	closer, err := InitLogger(dir)
	require.NoError(t, err)
	defer SetOutput(os.Stdout)

	Info.Println("to file")
	require.NoError(t, closer.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
