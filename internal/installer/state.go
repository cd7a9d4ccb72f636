package installer

// State is a step of the install state machine.
type State int

const (
	StateNotInstalled State = iota
	StateDownloading
	StateUnpacking
	StateInstalled
	StateSymlinksConfigured
	StatePackagesUpdated
	StateReady
)

var stateNames = [...]string{
	StateNotInstalled:       "not-installed",
	StateDownloading:        "downloading",
	StateUnpacking:          "unpacking",
	StateInstalled:          "installed",
	StateSymlinksConfigured: "symlinks-configured",
	StatePackagesUpdated:    "packages-updated",
	StateReady:              "ready",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
