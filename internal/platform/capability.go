package platform

// Capability is the result of probing for a host feature
type Capability int

const (
	// Unsupported means the feature is known to be missing
	Unsupported Capability = iota
	// SupportedUntested means the feature looks present but has not been exercised yet
	SupportedUntested
	// Supported means the feature is present and known to work
	Supported
)

func (c Capability) String() string {
	switch c {
	case SupportedUntested:
		return "supported-untested"
	case Supported:
		return "supported"
	default:
		return "unsupported"
	}
}

// Available reports whether the feature may be attempted
func (c Capability) Available() bool {
	return c != Unsupported
}

// Capabilities lists the host features the save workflow depends on.
// It is probed once at startup and injected into the workflow.
type Capabilities struct {
	DirectoryAccess Capability
	SaveDialog      Capability
}

// HostInfo describes the running host for capability probing
type HostInfo struct {
	Mobile     bool
	HasDisplay bool
}

// Probe derives capabilities from the host. Desktops get both features;
// mobile hosts have no stable directory paths and an unverified save dialog;
// headless runs get neither and fall back to plain downloads.
func Probe(host HostInfo) Capabilities {
	switch {
	case !host.HasDisplay:
		return Capabilities{}
	case host.Mobile:
		return Capabilities{DirectoryAccess: Unsupported, SaveDialog: SupportedUntested}
	default:
		return Capabilities{DirectoryAccess: Supported, SaveDialog: Supported}
	}
}
