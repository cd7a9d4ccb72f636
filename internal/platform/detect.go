package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using actual host detection.
type RealDetector struct {
	// goos is the fallback OS name; runtime.GOOS unless overridden in tests.
	goos string
	// hostOS queries the host OS; gopsutil unless overridden in tests.
	hostOS func(ctx context.Context) (string, error)
}

// NewDetector creates a new platform detector.
func NewDetector() Detector {
	return &RealDetector{
		goos:   runtime.GOOS,
		hostOS: gopsutilOS,
	}
}

// Detect returns the release platform of the running host.
//
// gopsutil is asked first since it reports the kernel family independently of
// the build target. If it fails the detector falls back to runtime.GOOS.
// A cancelled context is a hard failure.
func (d *RealDetector) Detect(ctx context.Context) (OS, error) {
	name, err := d.hostOS(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("platform detection cancelled: %w", ctx.Err())
		}
		name = d.goos
	}

	o, err := mapHostOS(name)
	if err != nil {
		// gopsutil may report something we do not know; GOOS is authoritative then
		if name != d.goos {
			return mapHostOS(d.goos)
		}
		return "", err
	}
	return o, nil
}

func gopsutilOS(ctx context.Context) (string, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return "", err
	}
	return info.OS, nil
}
