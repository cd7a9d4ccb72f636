package installer

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// MarkerFileName is written into the distribution once it is fully unpacked.
// A distribution directory without it is an interrupted install.
const MarkerFileName = ".texloader-install.yaml"

// Marker records a completed distribution install.
type Marker struct {
	ID          string    `yaml:"id"`
	Version     string    `yaml:"version"`
	OS          string    `yaml:"os"`
	Arch        string    `yaml:"arch"`
	InstalledAt time.Time `yaml:"installed_at"`
}

// WriteMarker writes m to path.
func WriteMarker(path string, m Marker) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("encode install marker: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write install marker: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename install marker: %w", err)
	}
	return nil
}

// ReadMarker reads the marker at path. A missing marker returns an error
// satisfying errors.Is(err, os.ErrNotExist).
func ReadMarker(path string) (*Marker, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Marker
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode install marker %s: %w", filepath.Base(path), err)
	}
	return &m, nil
}

// distributionStatus describes what is on disk at the distribution directory
type distributionStatus int

const (
	distributionMissing distributionStatus = iota
	distributionIncomplete
	distributionComplete
)

func inspectDistribution(p Profile) (distributionStatus, *Marker, error) {
	if _, err := os.Lstat(p.DistributionDir()); err != nil {
		if os.IsNotExist(err) {
			return distributionMissing, nil, nil
		}
		return 0, nil, fmt.Errorf("stat distribution: %w", err)
	}

	m, err := ReadMarker(p.MarkerPath())
	if err != nil {
		// Missing or unreadable marker
		return distributionIncomplete, nil, nil
	}
	return distributionComplete, m, nil
}
