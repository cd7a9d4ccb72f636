// Package tlmgr runs the TeX Live package manager bundled with an unpacked
// TinyTeX distribution.
//
// Every invocation runs ./tlmgr (tlmgr.bat on Windows) from the
// distribution's bin directory with the output streamed to the caller.
package tlmgr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// DefaultWaitDelay is how long a cancelled tlmgr gets to exit after the
// interrupt before it is killed.
const DefaultWaitDelay = 10 * time.Second

// BridgeError reports a tlmgr invocation that could not be started or
// exited with a non-zero status.
type BridgeError struct {
	Args     []string
	ExitCode int // -1 when the process did not run to completion
	Err      error
}

func (e *BridgeError) Error() string {
	cmdline := strings.Join(append([]string{"tlmgr"}, e.Args...), " ")
	if e.ExitCode >= 0 {
		return fmt.Sprintf("%s: exit status %d", cmdline, e.ExitCode)
	}
	return fmt.Sprintf("%s: %v", cmdline, e.Err)
}

func (e *BridgeError) Unwrap() error {
	return e.Err
}

// Options configures a Client.
type Options struct {
	Stdout io.Writer // nil discards
	Stderr io.Writer // nil discards
	// Windows selects tlmgr.bat instead of tlmgr
	Windows bool
	// WaitDelay overrides DefaultWaitDelay
	WaitDelay time.Duration
}

// Client invokes tlmgr inside one distribution bin directory.
type Client struct {
	binDir    string
	exe       string
	stdout    io.Writer
	stderr    io.Writer
	waitDelay time.Duration
}

// NewClient creates a client for the tlmgr found in binDir.
func NewClient(binDir string, opts Options) *Client {
	exe := "tlmgr"
	if opts.Windows {
		exe = "tlmgr.bat"
	}
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	if opts.WaitDelay <= 0 {
		opts.WaitDelay = DefaultWaitDelay
	}

	return &Client{
		binDir:    binDir,
		exe:       exe,
		stdout:    opts.Stdout,
		stderr:    opts.Stderr,
		waitDelay: opts.WaitDelay,
	}
}

// Path returns the absolute-or-relative path of the tlmgr executable.
func (c *Client) Path() string {
	return filepath.Join(c.binDir, c.exe)
}

// Run executes tlmgr with args and waits for it to finish.
func (c *Client) Run(ctx context.Context, args ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	exe, err := filepath.Abs(c.Path())
	if err != nil {
		return &BridgeError{Args: args, ExitCode: -1, Err: err}
	}

	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Dir = c.binDir
	cmd.Stdout = c.stdout
	cmd.Stderr = c.stderr

	// Let tlmgr clean up on SIGINT/SIGTERM before it is killed
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = c.waitDelay

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			return &BridgeError{Args: args, ExitCode: exitErr.ExitCode(), Err: err}
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &BridgeError{Args: args, ExitCode: -1, Err: fmt.Errorf("%w: %w", ctxErr, err)}
		}
		return &BridgeError{Args: args, ExitCode: -1, Err: err}
	}

	return nil
}

// SetSysBin points tlmgr's symlink target at dir. dir should be absolute.
func (c *Client) SetSysBin(ctx context.Context, dir string) error {
	return c.Run(ctx, "option", "sys_bin", dir)
}

// AddPath creates symlinks for every distribution binary in sys_bin.
func (c *Client) AddPath(ctx context.Context) error {
	return c.Run(ctx, "path", "add")
}

// UpdateSelf updates tlmgr itself.
func (c *Client) UpdateSelf(ctx context.Context) error {
	return c.Run(ctx, "update", "--self")
}

// Install installs pkgs in a single invocation. An empty list is a no-op.
func (c *Client) Install(ctx context.Context, pkgs ...string) error {
	if len(pkgs) == 0 {
		return nil
	}
	return c.Run(ctx, append([]string{"install"}, pkgs...)...)
}
