package types

// OutcomeStatus tells whether a scorer computed its value or fell back to zero
type OutcomeStatus string

const (
	StatusOK       OutcomeStatus = "ok"
	StatusDegraded OutcomeStatus = "degraded"
)

// Outcome is the result of a fail-soft scorer. A degraded outcome always has
// a zero value and carries the reason it could not be computed.
type Outcome struct {
	Value  ScoreValue
	Status OutcomeStatus
	Reason error
}

// OK wraps a computed score, clamping it.
func OK(v ScoreValue) Outcome {
	return Outcome{Value: v.Clamp(), Status: StatusOK}
}

// Degraded records a scorer failure as a zero score.
func Degraded(reason error) Outcome {
	return Outcome{Value: 0, Status: StatusDegraded, Reason: reason}
}

// IsDegraded reports whether the scorer fell back to zero.
func (o Outcome) IsDegraded() bool {
	return o.Status == StatusDegraded
}
