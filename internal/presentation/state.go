package presentation

// State represents what the secondary output is currently showing.
type State int

const (
	// Disconnected means no secondary display is attached; no surface
	// is open and no hymn is current.
	Disconnected State = iota
	// Connected means a display is attached and idle.
	Connected
	// PresentingSingle means one hymn is shown outside a worship session.
	PresentingSingle
	// WorshipBackground means a worship session is live with the
	// background image shown between hymns.
	WorshipBackground
	// WorshipPresenting means a hymn is shown within a worship session.
	WorshipPresenting
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connected:
		return "Connected"
	case PresentingSingle:
		return "PresentingSingle"
	case WorshipBackground:
		return "WorshipBackground"
	case WorshipPresenting:
		return "WorshipPresenting"
	default:
		return "Unknown"
	}
}

// Tag returns the stable identifier used in persisted snapshots.
func (s State) Tag() string {
	return s.String()
}

// StateFromTag resolves a persisted tag back to a State.
// Unknown tags resolve to Disconnected, the fail-safe state.
func StateFromTag(tag string) State {
	for _, s := range []State{Disconnected, Connected, PresentingSingle, WorshipBackground, WorshipPresenting} {
		if s.Tag() == tag {
			return s
		}
	}
	return Disconnected
}

// IsPresenting returns true if a hymn is currently shown.
func (s State) IsPresenting() bool {
	return s == PresentingSingle || s == WorshipPresenting
}

// InWorship returns true while a worship session holds the display.
func (s State) InWorship() bool {
	return s == WorshipBackground || s == WorshipPresenting
}
