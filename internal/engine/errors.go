package engine

// constError is an immutable error type for sentinel errors.
// It implements the error interface and can be compared with errors.Is().
type constError string

func (e constError) Error() string { return string(e) }

var (
	// ErrNoProductionData indicates the period has no production records.
	// A calculation cannot exist without a denominator for allocation;
	// this is a terminal, user-correctable condition.
	ErrNoProductionData = constError("No production data for reporting period")
)
