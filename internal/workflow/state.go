package workflow

// State is the position of a submission in its lifecycle
type State int

const (
	Idle State = iota
	Validating
	Submitting
	ResolvingOutput
	Saved
	Downloaded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Submitting:
		return "submitting"
	case ResolvingOutput:
		return "resolving-output"
	case Saved:
		return "saved"
	case Downloaded:
		return "downloaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state ends a submission
func (s State) Terminal() bool {
	return s == Saved || s == Downloaded || s == Failed
}

// InFlight reports whether a submission is running
func (s State) InFlight() bool {
	return s == Validating || s == Submitting || s == ResolvingOutput
}

// Feedback is the pair of user-visible messages. At most one is set.
type Feedback struct {
	Message string
	Error   string
}

// Result is the outcome of one submission
type Result struct {
	Feedback
	State State
	// Notice explains a fallback taken on the way to a successful save
	Notice   string
	Filename string
	// Location is the folder or downloads path the file went to, when known
	Location string
	// Err is the underlying failure, if any
	Err error
}

func succeeded(message string) Feedback { return Feedback{Message: message} }

func failed(message string) Feedback { return Feedback{Error: message} }
