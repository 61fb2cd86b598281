// Package msg prints levelled, coloured console messages.
package msg

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	// Stdout receives info and success lines
	Stdout io.Writer = color.Output
	// Stderr receives warnings, errors and debug lines
	Stderr io.Writer = color.Error
)

// SetOutput redirects all messages, returning a func that restores the previous writers.
func SetOutput(stdout, stderr io.Writer) (restore func()) {
	oldOut, oldErr := Stdout, Stderr
	Stdout, Stderr = stdout, stderr
	return func() { Stdout, Stderr = oldOut, oldErr }
}

func DebugEnabled() bool {
	return os.Getenv("FORGE_DEBUG") != ""
}

func Info(format string, a ...any) {
	fmt.Fprintf(Stdout, "%s: %s\n", color.HiGreenString("info"), fmt.Sprintf(format, a...))
}

func Success(format string, a ...any) {
	fmt.Fprintf(Stdout, "%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, a...))
}

func Warn(format string, a ...any) {
	fmt.Fprintf(Stderr, "%s: %s\n", color.YellowString("warn"), fmt.Sprintf(format, a...))
}

func Error(format string, a ...any) {
	fmt.Fprintf(Stderr, "%s: %s\n", color.HiRedString("error"), fmt.Sprintf(format, a...))
}

func Debug(format string, a ...any) {
	if !DebugEnabled() {
		return
	}
	fmt.Fprintf(Stderr, "%s: %s\n", color.CyanString("debug"), fmt.Sprintf(format, a...))
}

// IndentWriter prefixes every line written through it.
type IndentWriter struct {
	Indent    string
	W         io.Writer
	didIndent bool
}

func (w *IndentWriter) Write(p []byte) (n int, err error) {
	buf := make([]byte, 0, len(p)+len(w.Indent))
	for _, c := range p {
		if !w.didIndent {
			buf = append(buf, w.Indent...)
			w.didIndent = true
		}
		buf = append(buf, c)
		if c == '\n' || c == '\r' {
			w.didIndent = false
		}
	}
	if _, err := w.W.Write(buf); err != nil {
		return 0, err
	}
	return len(p), nil
}
