package packages

import (
	"context"
	"fmt"
	"os"

	lua "github.com/yuin/gopher-lua"

	"github.com/ZebulonRouseFrantzich/texloader/internal/platform"
)

// sandboxLuaVM strips everything that reaches outside the VM: the os, io and
// debug libraries and all code loading functions. string, table and math stay.
func sandboxLuaVM(L *lua.LState) {
	L.SetGlobal("os", lua.LNil)
	L.SetGlobal("io", lua.LNil)

	L.SetGlobal("require", lua.LNil)
	L.SetGlobal("dofile", lua.LNil)
	L.SetGlobal("loadfile", lua.LNil)
	L.SetGlobal("load", lua.LNil)
	L.SetGlobal("loadstring", lua.LNil)

	L.SetGlobal("debug", lua.LNil)
}

func newSandboxedVM() *lua.LState {
	L := lua.NewState()
	sandboxLuaVM(L)
	return L
}

// LoadManifest evaluates the Lua manifest at path and returns its packages.
func LoadManifest(ctx context.Context, path string, p platform.Platform) ([]string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &ListError{Path: path, Message: "cannot open", Err: err}
	}

	pkgs, err := EvalManifest(ctx, string(src), p)
	if err != nil {
		return nil, &ListError{Path: path, Message: "invalid manifest", Err: err}
	}
	return pkgs, nil
}

// EvalManifest runs a manifest script and returns the strings in its global
// "packages" array, in order. nil entries (from platform.when) are skipped.
func EvalManifest(ctx context.Context, src string, p platform.Platform) ([]string, error) {
	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if err := platform.InjectPlatformTable(L, p); err != nil {
		return nil, fmt.Errorf("inject platform table: %w", err)
	}

	if err := L.DoString(src); err != nil {
		return nil, fmt.Errorf("lua error: %w", err)
	}

	value := L.GetGlobal("packages")
	table, ok := value.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'packages' table: expected table, got %s", value.Type())
	}

	var pkgs []string
	for i := 1; i <= table.MaxN(); i++ {
		entry := table.RawGetInt(i)
		switch entry.Type() {
		case lua.LTNil:
			continue
		case lua.LTString:
			if name := entry.String(); name != "" {
				pkgs = append(pkgs, name)
			}
		default:
			return nil, fmt.Errorf("packages[%d]: expected string, got %s", i, entry.Type())
		}
	}

	return pkgs, nil
}
