package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ZebulonRouseFrantzich/texloader/internal/packages"
	"github.com/ZebulonRouseFrantzich/texloader/internal/platform"
	"github.com/ZebulonRouseFrantzich/texloader/internal/release"
)

// EnvPrefix prefixes every environment variable texloader reads.
const EnvPrefix = "TEXLOADER"

// DefaultTarget is the install directory used when none is given.
const DefaultTarget = "local"

// Setting keys
const (
	KeyOS              = "os"
	KeyTarget          = "target"
	KeyBinDir          = "bin_dir"
	KeyVersion         = "version"
	KeyNoPackages      = "no_packages"
	KeyPackagesOnly    = "packages_only"
	KeyPackageList     = "package_list"
	KeyExtraPackages   = "extra_packages"
	KeyReinstall       = "reinstall"
	KeyReleaseURL      = "release_url"
	KeyDownloadTimeout = "download_timeout"
	KeyVerbose         = "verbose"
)

// flagKeys maps CLI flag names onto setting keys.
var flagKeys = map[string]string{
	"os":                KeyOS,
	"target":            KeyTarget,
	"bin-dir":           KeyBinDir,
	"tt-version":        KeyVersion,
	"tt-no-packages":    KeyNoPackages,
	"tt-packages-only":  KeyPackagesOnly,
	"tt-package-list":   KeyPackageList,
	"tt-extra-packages": KeyExtraPackages,
	"tt-reinstall":      KeyReinstall,
	"verbose":           KeyVerbose,
}

// Settings is the validated configuration for one run.
type Settings struct {
	// OS is the explicit platform override; empty means auto-detect
	OS              string
	Target          string
	BinDir          string // empty means {Target}/bin
	Version         string
	NoPackages      bool
	PackagesOnly    bool
	PackageList     string
	ExtraPackages   string
	Reinstall       bool
	ReleaseURL      string
	DownloadTimeout time.Duration
	Verbose         bool
}

// LoadOptions controls where settings are read from.
type LoadOptions struct {
	// ConfigFile is an optional settings file; it must exist when set
	ConfigFile string
	// Flags are bound by name; flags not in the set are ignored
	Flags *pflag.FlagSet
}

// ValidationError reports an invalid setting.
type ValidationError struct {
	Key     string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %s: %v", e.Key, e.Message, e.Err)
	}
	return fmt.Sprintf("invalid %s: %s", e.Key, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyOS, "")
	v.SetDefault(KeyTarget, DefaultTarget)
	v.SetDefault(KeyBinDir, "")
	v.SetDefault(KeyVersion, release.DefaultVersion)
	v.SetDefault(KeyNoPackages, false)
	v.SetDefault(KeyPackagesOnly, false)
	v.SetDefault(KeyPackageList, packages.DefaultListPath)
	v.SetDefault(KeyExtraPackages, "")
	v.SetDefault(KeyReinstall, false)
	v.SetDefault(KeyReleaseURL, release.DefaultBaseURL)
	v.SetDefault(KeyDownloadTimeout, release.DefaultTimeout)
	v.SetDefault(KeyVerbose, false)
}

// Load resolves settings from defaults, the config file, the environment and
// flags, then validates them.
func Load(opts LoadOptions) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		if _, err := os.Stat(opts.ConfigFile); err != nil {
			return nil, &ValidationError{Key: "config", Message: "config file not found", Err: err}
		}
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, &ValidationError{Key: "config", Message: "cannot read config file", Err: err}
		}
	}

	if opts.Flags != nil {
		for name, key := range flagKeys {
			flag := opts.Flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	s := &Settings{
		OS:              strings.TrimSpace(v.GetString(KeyOS)),
		Target:          v.GetString(KeyTarget),
		BinDir:          v.GetString(KeyBinDir),
		Version:         strings.TrimSpace(v.GetString(KeyVersion)),
		NoPackages:      v.GetBool(KeyNoPackages),
		PackagesOnly:    v.GetBool(KeyPackagesOnly),
		PackageList:     v.GetString(KeyPackageList),
		ExtraPackages:   v.GetString(KeyExtraPackages),
		Reinstall:       v.GetBool(KeyReinstall),
		ReleaseURL:      strings.TrimRight(v.GetString(KeyReleaseURL), "/"),
		DownloadTimeout: v.GetDuration(KeyDownloadTimeout),
		Verbose:         v.GetBool(KeyVerbose),
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks settings for consistency.
func (s *Settings) Validate() error {
	var errs []error

	if s.OS != "" {
		if _, err := platform.Parse(s.OS); err != nil {
			errs = append(errs, &ValidationError{Key: KeyOS, Message: "unsupported platform", Err: err})
		}
	}
	if strings.TrimSpace(s.Target) == "" {
		errs = append(errs, &ValidationError{Key: KeyTarget, Message: "must not be empty"})
	}
	if s.Version == "" {
		errs = append(errs, &ValidationError{Key: KeyVersion, Message: "must not be empty"})
	}
	if s.ReleaseURL == "" {
		errs = append(errs, &ValidationError{Key: KeyReleaseURL, Message: "must not be empty"})
	}
	if s.DownloadTimeout <= 0 {
		errs = append(errs, &ValidationError{Key: KeyDownloadTimeout, Message: fmt.Sprintf("must be positive, got %s", s.DownloadTimeout)})
	}

	return errors.Join(errs...)
}
