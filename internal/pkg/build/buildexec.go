package build

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	types "github.com/ozacod/forge/internal/pkg/build/interfaces"
	"github.com/ozacod/forge/internal/pkg/msg"
)

// Variables for mocking in tests
var execCommand = exec.CommandContext

var progressRe = regexp.MustCompile(`^\[\s*\d+%]`)

// defaultTailBytes bounds how much tool output is kept for diagnostics.
const defaultTailBytes = 64 * 1024

// Runner executes external tools and reports their exit code.
type Runner struct {
	// Verbose echoes tool output to Stdout/Stderr as it arrives.
	Verbose bool
	// Interactive enables the progress bar for invocations that ask for it.
	Interactive bool
	Stdout      io.Writer
	Stderr      io.Writer
	// Env is appended to every invocation's environment.
	Env []string
}

// NewRunner creates a Runner writing to the process stdout/stderr.
func NewRunner(verbose bool, env ...string) *Runner {
	fd := os.Stderr.Fd()
	return &Runner{
		Verbose:     verbose,
		Interactive: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd),
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Env:         env,
	}
}

// Run starts the command and waits for it. A non-zero exit is not an error:
// it is returned in Result.ExitCode for the caller to classify.
func (r *Runner) Run(ctx context.Context, inv types.Invocation) (types.Result, error) {
	cmd := execCommand(ctx, inv.Name, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Env = append(append(os.Environ(), r.Env...), inv.Env...)

	msg.Debug("exec: %s (dir=%q)", inv, inv.Dir)

	tail := &tailBuffer{max: defaultTailBytes}

	var runErr error
	switch {
	case r.Verbose:
		cmd.Stdout = io.MultiWriter(r.Stdout, tail)
		cmd.Stderr = io.MultiWriter(r.Stderr, tail)
		runErr = cmd.Run()
	case inv.Progress && r.Interactive:
		runErr = r.runWithProgress(cmd, tail)
	default:
		cmd.Stdout = tail
		cmd.Stderr = tail
		runErr = cmd.Run()
	}

	if runErr == nil {
		return types.Result{ExitCode: 0, Output: tail.String()}, nil
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		return types.Result{ExitCode: exitErr.ExitCode(), Output: tail.String()}, nil
	}
	return types.Result{ExitCode: -1, Output: tail.String()}, fmt.Errorf("failed to run %s: %w", inv.Name, runErr)
}

// runWithProgress streams cmake's "[ 93%]" lines into a progress bar and keeps
// every other line for diagnostics.
func (r *Runner) runWithProgress(cmd *exec.Cmd, tail *tailBuffer) error {
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(r.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetDescription("[cyan]Compiling[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[cyan]█[reset]",
			SaucerHead:    "[cyan]▸[reset]",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionClearOnFinish(),
	)

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		return err
	}

	waitCh := make(chan error, 1)
	go func() {
		waitCh <- cmd.Wait()
		pw.Close()
	}()

	lastPercent := -1
	sc := bufio.NewScanner(pr)
	sc.Buffer(make([]byte, 0, 64*1024), 512*1024)
	for sc.Scan() {
		line := sc.Text()
		if match := progressRe.FindString(line); match != "" {
			if pct := extractPercent(match); pct >= 0 && pct != lastPercent {
				_ = bar.Set(pct)
				lastPercent = pct
			}
			continue
		}
		_, _ = tail.Write([]byte(line + "\n"))
	}
	// drain anything left if the scanner stopped early (line too long)
	_, _ = io.Copy(io.Discard, pr)

	err := <-waitCh
	_ = bar.Finish()
	return err
}

func extractPercent(line string) int {
	// line format: [ 93%] ...
	start := strings.Index(line, "[")
	end := strings.Index(line, "%")
	if start == -1 || end == -1 || end <= start {
		return -1
	}
	var pct int
	if _, err := fmt.Sscanf(strings.TrimSpace(line[start+1:end]), "%d", &pct); err != nil {
		return -1
	}
	return pct
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if len(t.buf) > t.max {
		t.buf = t.buf[len(t.buf)-t.max:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}
