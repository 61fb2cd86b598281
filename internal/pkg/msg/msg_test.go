package msg

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestLevels(t *testing.T) {
	color.NoColor = true
	var out, errOut bytes.Buffer
	restore := SetOutput(&out, &errOut)
	defer restore()

	Info("configuring %s", "engine")
	Warn("black not found")
	Error("boom")

	assert.Equal(t, "info: configuring engine\n", out.String())
	assert.Contains(t, errOut.String(), "warn: black not found\n")
	assert.Contains(t, errOut.String(), "error: boom\n")
}

func TestDebug(t *testing.T) {
	color.NoColor = true
	var errOut bytes.Buffer
	restore := SetOutput(&bytes.Buffer{}, &errOut)
	defer restore()

	t.Setenv("FORGE_DEBUG", "")
	Debug("hidden")
	assert.Empty(t, errOut.String())

	t.Setenv("FORGE_DEBUG", "1")
	Debug("shown %d", 1)
	assert.Equal(t, "debug: shown 1\n", errOut.String())
}

func TestIndentWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &IndentWriter{Indent: "  ", W: &buf}
	_, err := w.Write([]byte("one\ntwo"))
	assert.NoError(t, err)
	_, err = w.Write([]byte(" more\nthree\n"))
	assert.NoError(t, err)
	assert.Equal(t, "  one\n  two more\n  three\n", buf.String())
}
