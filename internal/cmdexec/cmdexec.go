// Package cmdexec runs external command-line tools with line-oriented output
// capture. Backends that shell out accept an Executor so tests can replace
// the process with a stub.
package cmdexec

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout, onStderr func(string)) error
}

// Command is the Executor backed by os/exec.
type Command struct{}

// Run starts binary and forwards each stdout and stderr line to the matching
// callback. A nil callback drops that stream.
func (Command) Run(ctx context.Context, binary string, args []string, onStdout, onStderr func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader, forward func(string)) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			if forward != nil {
				forward(scanner.Text())
			}
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	wg.Add(2)
	go scan(stdout, onStdout)
	go scan(stderr, onStderr)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}

// Output is the captured result of a command run through Capture.
type Output struct {
	Stdout []string
	Stderr []string
}

// StderrText joins captured stderr lines, trimmed.
func (o Output) StderrText() string {
	return strings.TrimSpace(strings.Join(o.Stderr, "\n"))
}

// Capture runs binary through exec and collects both streams. Lines are
// collected under a mutex because the streams are scanned concurrently.
func Capture(ctx context.Context, exec Executor, binary string, args []string) (Output, error) {
	if exec == nil {
		return Output{}, errors.New("executor required")
	}
	var (
		mu  sync.Mutex
		out Output
	)
	err := exec.Run(ctx, binary, args,
		func(line string) {
			mu.Lock()
			out.Stdout = append(out.Stdout, line)
			mu.Unlock()
		},
		func(line string) {
			mu.Lock()
			out.Stderr = append(out.Stderr, line)
			mu.Unlock()
		},
	)
	return out, err
}
