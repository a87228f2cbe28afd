package mutation

// Outcome distinguishes degraded success from real failure, so callers
// don't have to infer it from an error string's presence.
type Outcome int

const (
	// Applied means the backend accepted the mutation.
	Applied Outcome = iota
	// AppliedLocalOnly means only local state changed: there was no
	// usable token or the backend was unreachable. State diverges from
	// backend truth until the next successful fetch.
	AppliedLocalOnly
	// Rejected means the backend refused the mutation and no state
	// changed.
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case AppliedLocalOnly:
		return "applied-local-only"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Result is the return value of every store mutation.
type Result struct {
	Outcome Outcome
	// Reason carries the backend's validation message when Rejected.
	Reason string
	// Err is the underlying transport error behind a local-only
	// fallback, when there was one.
	Err error
}

func AppliedResult() Result {
	return Result{Outcome: Applied}
}

func LocalOnly(err error) Result {
	return Result{Outcome: AppliedLocalOnly, Err: err}
}

func Reject(reason string) Result {
	return Result{Outcome: Rejected, Reason: reason}
}
