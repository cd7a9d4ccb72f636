package platform

import (
	"context"
	"fmt"
	"strings"
)

// hostAliases maps OS names reported by the runtime or gopsutil to release
// platforms. Only used for detection; Parse accepts the canonical names only.
var hostAliases = map[string]OS{
	"linux":   Linux,
	"freebsd": FreeBSD,
	"darwin":  Darwin,
	"macos":   Darwin,
	"windows": Win32,
	"win32":   Win32,
}

// Parse converts an explicit --os value into an OS.
func Parse(name string) (OS, error) {
	o := OS(normalizeName(name))
	if !o.IsValid() {
		return "", &UnknownPlatformError{Value: name}
	}
	return o, nil
}

// Resolve returns the Platform for name. An empty name means the host OS is
// detected with d.
func Resolve(ctx context.Context, d Detector, name string) (Platform, error) {
	if strings.TrimSpace(name) != "" {
		o, err := Parse(name)
		if err != nil {
			return Platform{}, err
		}
		return For(o), nil
	}

	if d == nil {
		return Platform{}, fmt.Errorf("no platform given and no detector available")
	}

	o, err := d.Detect(ctx)
	if err != nil {
		return Platform{}, fmt.Errorf("detect platform: %w", err)
	}
	return For(o), nil
}

// mapHostOS maps a host OS name onto a release platform.
func mapHostOS(name string) (OS, error) {
	if o, ok := hostAliases[normalizeName(name)]; ok {
		return o, nil
	}
	return "", &UnknownPlatformError{Value: name}
}

// normalizeName lowercases and trims a platform name.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
