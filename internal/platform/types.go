// Package platform resolves the operating system a TinyTeX distribution is
// installed for. Each supported OS maps to a release archive extension and to
// the architecture-tagged bin directory inside the unpacked distribution.
//
// The OS can be given explicitly (the --os flag) or detected from the running
// host. The resolved Platform is also exposed to Lua package manifests as a
// read-only table.
package platform

import (
	"context"
	"fmt"
	"strings"
)

// OS identifies a TinyTeX release platform.
type OS string

const (
	// Linux selects the x86_64 Linux release.
	Linux OS = "linux"
	// FreeBSD uses the Linux release layout.
	FreeBSD OS = "freebsd"
	// Darwin selects the macOS release.
	Darwin OS = "darwin"
	// Win32 selects the Windows release.
	Win32 OS = "win32"
)

// Supported lists every OS accepted by Parse, in flag help order.
var Supported = []OS{Linux, FreeBSD, Darwin, Win32}

// String returns the string representation of the OS
func (o OS) String() string {
	return string(o)
}

// IsValid returns true if the OS is one of the supported values
func (o OS) IsValid() bool {
	switch o {
	case Linux, FreeBSD, Darwin, Win32:
		return true
	default:
		return false
	}
}

// Ext returns the release archive extension for the OS.
func (o OS) Ext() Ext {
	switch o {
	case Linux, FreeBSD:
		return ExtTarGz
	case Darwin:
		return ExtTgz
	default:
		return ExtZip
	}
}

// Arch returns the bin subdirectory name TinyTeX uses for the OS.
func (o OS) Arch() string {
	switch o {
	case Linux, FreeBSD:
		return "x86_64-linux"
	case Darwin:
		return "x86_64-darwin"
	default:
		return "win32"
	}
}

// Ext is a release archive extension.
type Ext string

const (
	ExtTarGz Ext = "tar.gz"
	ExtTgz   Ext = "tgz"
	ExtTarXz Ext = "tar.xz"
	ExtZip   Ext = "zip"
)

// String returns the string representation of the extension
func (e Ext) String() string {
	return string(e)
}

// IsTar reports whether the extension names a compressed tarball.
func (e Ext) IsTar() bool {
	return e == ExtTarGz || e == ExtTgz || e == ExtTarXz
}

// Platform is the resolved, immutable platform description for one run.
type Platform struct {
	OS   OS
	Ext  Ext
	Arch string
}

// For builds the Platform for a known OS.
func For(o OS) Platform {
	return Platform{
		OS:   o,
		Ext:  o.Ext(),
		Arch: o.Arch(),
	}
}

// IsWindows returns true if the platform is Windows.
func (p Platform) IsWindows() bool {
	return p.OS == Win32
}

// IsLinux returns true for the Linux release layout (Linux and FreeBSD).
func (p Platform) IsLinux() bool {
	return p.OS == Linux || p.OS == FreeBSD
}

// IsDarwin returns true if the platform is macOS.
func (p Platform) IsDarwin() bool {
	return p.OS == Darwin
}

// Detector reports the OS of the running host.
type Detector interface {
	Detect(ctx context.Context) (OS, error)
}

// UnknownPlatformError is returned when a platform name cannot be resolved.
// It is a configuration error: nothing was downloaded or modified.
type UnknownPlatformError struct {
	Value string
}

func (e *UnknownPlatformError) Error() string {
	names := make([]string, len(Supported))
	for i, o := range Supported {
		names[i] = o.String()
	}
	return fmt.Sprintf("unknown platform %q (supported: %s)", e.Value, strings.Join(names, ", "))
}
