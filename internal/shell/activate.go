package shell

import (
	"fmt"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Script file names written into the target directory
const (
	ShScriptName  = "activate"
	PS1ScriptName = "activate.ps1"
)

// Scripts holds both renderings of the activation script.
type Scripts struct {
	Sh  string
	PS1 string
}

const shTemplate = `#!/bin/sh
# Generated by texloader. Source this file: . ./activate
deactivate() {
    # reset old environment variables
    if [ -n "${_OLD_VIRTUAL_PATH+x}" ]; then
        PATH="${_OLD_VIRTUAL_PATH:-}"
        export PATH
        unset _OLD_VIRTUAL_PATH
    fi

    # bash and zsh cache command locations
    if [ -n "${BASH:-}" ] || [ -n "${ZSH_VERSION:-}" ]; then
        hash -r
    fi

    if [ -n "${_OLD_VIRTUAL_PS1+x}" ]; then
        PS1="${_OLD_VIRTUAL_PS1:-}"
        export PS1
        unset _OLD_VIRTUAL_PS1
    fi

    if [ ! "${1:-}" = "nondestructive" ]; then
        unset -f deactivate
    fi
}

# unset irrelevant variables
deactivate nondestructive

_OLD_VIRTUAL_PATH="$PATH"
PATH=%s:"$PATH"
export PATH

if [ -n "${BASH:-}" ] || [ -n "${ZSH_VERSION:-}" ]; then
    hash -r
fi
`

const ps1Template = `# Generated by texloader. Dot-source this file: . .\activate.ps1
function global:deactivate([switch] $NonDestructive) {
    if (Test-Path variable:_OLD_VIRTUAL_PATH) {
        $env:PATH = $variable:_OLD_VIRTUAL_PATH
        Remove-Variable "_OLD_VIRTUAL_PATH" -Scope global
    }

    if (Test-Path function:_old_virtual_prompt) {
        $function:prompt = $function:_old_virtual_prompt
        Remove-Item function:\_old_virtual_prompt
    }

    if (!$NonDestructive) {
        Remove-Item function:deactivate
    }
}

# unset irrelevant variables
deactivate -NonDestructive

New-Variable -Scope global -Name _OLD_VIRTUAL_PATH -Value $env:PATH

$env:PATH = %s + [System.IO.Path]::PathSeparator + $env:PATH
`

// Render renders both activation scripts for binDir, which must be absolute.
// The output depends on binDir alone.
func Render(binDir string) (Scripts, error) {
	if !filepath.IsAbs(binDir) {
		return Scripts{}, fmt.Errorf("bin directory must be absolute: %s", binDir)
	}

	quoted, err := syntax.Quote(binDir, syntax.LangPOSIX)
	if err != nil {
		return Scripts{}, fmt.Errorf("quote bin directory: %w", err)
	}

	return Scripts{
		Sh:  fmt.Sprintf(shTemplate, quoted),
		PS1: fmt.Sprintf(ps1Template, quotePowerShell(binDir)),
	}, nil
}

// quotePowerShell returns s as a single-quoted PowerShell string literal
func quotePowerShell(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Validate parses a POSIX activation script and reports syntax errors.
func Validate(script string) error {
	parser := syntax.NewParser(syntax.Variant(syntax.LangPOSIX))
	if _, err := parser.Parse(strings.NewReader(script), ShScriptName); err != nil {
		return fmt.Errorf("invalid activation script: %w", err)
	}
	return nil
}
