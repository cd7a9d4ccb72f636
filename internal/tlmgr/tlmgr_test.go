package tlmgr

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// stubTlmgr writes a fake tlmgr that appends its arguments to args.log in its
// own directory, echoes them and exits with the code in $TLMGR_EXIT.
func stubTlmgr(t *testing.T) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("stub tlmgr is a shell script")
	}

	binDir := t.TempDir()
	script := `#!/bin/sh
echo "$*" >> args.log
echo "tlmgr $*"
echo "warning from tlmgr" >&2
exit ${TLMGR_EXIT:-0}
`
	if err := os.WriteFile(filepath.Join(binDir, "tlmgr"), []byte(script), 0755); err != nil {
		t.Fatalf("cannot create stub tlmgr: %v", err)
	}
	return binDir
}

func readArgsLog(t *testing.T, binDir string) []string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(binDir, "args.log"))
	if err != nil {
		t.Fatalf("read args.log: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		windows bool
		want    string
	}{
		{"unix", false, filepath.Join("dist", "bin", "tlmgr")},
		{"windows", true, filepath.Join("dist", "bin", "tlmgr.bat")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(filepath.Join("dist", "bin"), Options{Windows: tt.windows})
			if got := c.Path(); got != tt.want {
				t.Errorf("Path() = %q, want %q", got, tt.want)
			}
			if c.waitDelay != DefaultWaitDelay {
				t.Errorf("waitDelay = %v, want %v", c.waitDelay, DefaultWaitDelay)
			}
		})
	}
}

func TestClient_Helpers(t *testing.T) {
	binDir := stubTlmgr(t)

	var stdout, stderr bytes.Buffer
	c := NewClient(binDir, Options{Stdout: &stdout, Stderr: &stderr})
	ctx := context.Background()

	sysBin := filepath.Join(t.TempDir(), "bin")
	steps := []struct {
		name string
		run  func() error
		want string
	}{
		{"SetSysBin", func() error { return c.SetSysBin(ctx, sysBin) }, "option sys_bin " + sysBin},
		{"AddPath", func() error { return c.AddPath(ctx) }, "path add"},
		{"UpdateSelf", func() error { return c.UpdateSelf(ctx) }, "update --self"},
		{"Install", func() error { return c.Install(ctx, "amsmath", "geometry") }, "install amsmath geometry"},
	}

	var want []string
	for _, s := range steps {
		if err := s.run(); err != nil {
			t.Fatalf("%s() error = %v", s.name, err)
		}
		want = append(want, s.want)
	}

	got := readArgsLog(t, binDir)
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("invocations = %q, want %q", got, want)
	}

	if !strings.Contains(stdout.String(), "tlmgr path add") {
		t.Errorf("stdout not streamed: %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "warning from tlmgr") {
		t.Errorf("stderr not streamed: %q", stderr.String())
	}
}

func TestClient_InstallEmpty(t *testing.T) {
	binDir := stubTlmgr(t)
	c := NewClient(binDir, Options{})

	if err := c.Install(context.Background()); err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(binDir, "args.log")); !os.IsNotExist(err) {
		t.Error("tlmgr must not be invoked for an empty package list")
	}
}

func TestClient_NonZeroExit(t *testing.T) {
	binDir := stubTlmgr(t)
	t.Setenv("TLMGR_EXIT", "3")

	c := NewClient(binDir, Options{})
	err := c.Install(context.Background(), "nosuchpkg")

	var be *BridgeError
	if !errors.As(err, &be) {
		t.Fatalf("expected *BridgeError, got %T: %v", err, err)
	}
	if be.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", be.ExitCode)
	}
	if strings.Join(be.Args, " ") != "install nosuchpkg" {
		t.Errorf("Args = %q", be.Args)
	}
	if !strings.Contains(err.Error(), "tlmgr install nosuchpkg") {
		t.Errorf("error %q does not name the command", err)
	}
}

func TestClient_MissingExecutable(t *testing.T) {
	c := NewClient(t.TempDir(), Options{})

	err := c.AddPath(context.Background())

	var be *BridgeError
	if !errors.As(err, &be) {
		t.Fatalf("expected *BridgeError, got %T: %v", err, err)
	}
	if be.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", be.ExitCode)
	}
}

func TestClient_Cancelled(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub tlmgr is a shell script")
	}

	binDir := t.TempDir()
	script := "#!/bin/sh\nsleep 5\n"
	if err := os.WriteFile(filepath.Join(binDir, "tlmgr"), []byte(script), 0755); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	c := NewClient(binDir, Options{WaitDelay: 100 * time.Millisecond})
	start := time.Now()
	err := c.UpdateSelf(ctx)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded in chain, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("cancelled tlmgr took %v to return", elapsed)
	}
}

func TestClient_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(t.TempDir(), Options{})
	if err := c.AddPath(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("AddPath() error = %v, want context.Canceled", err)
	}
}
