package domain

// DepositStatus tracks the lifecycle of one deposit to one repository.
type DepositStatus string

const (
	DepositStatusSubmitted  DepositStatus = "submitted"
	DepositStatusAssembling DepositStatus = "assembling"
	DepositStatusRetrying   DepositStatus = "retrying"
	// DepositStatusNeedsVerification is set when the last transmission
	// ended with an unknown outcome. The next attempt verifies before
	// transmitting again.
	DepositStatusNeedsVerification DepositStatus = "needs-verification"
	DepositStatusAccepted          DepositStatus = "accepted"
	DepositStatusFailed            DepositStatus = "failed"
)

// depositTerminal partitions every DepositStatus. A value missing from this
// map is not a valid status.
var depositTerminal = map[DepositStatus]bool{
	DepositStatusSubmitted:         false,
	DepositStatusAssembling:        false,
	DepositStatusRetrying:          false,
	DepositStatusNeedsVerification: false,
	DepositStatusAccepted:          true,
	DepositStatusFailed:            true,
}

// DepositStatuses returns every DepositStatus value.
func DepositStatuses() []DepositStatus {
	return []DepositStatus{
		DepositStatusSubmitted,
		DepositStatusAssembling,
		DepositStatusRetrying,
		DepositStatusNeedsVerification,
		DepositStatusAccepted,
		DepositStatusFailed,
	}
}

// Valid reports whether s is a known status.
func (s DepositStatus) Valid() bool {
	_, ok := depositTerminal[s]
	return ok
}

// IsTerminal reports whether no further processing occurs from s.
func (s DepositStatus) IsTerminal() bool {
	return depositTerminal[s]
}

// IsIntermediate reports whether s is expected to transition further.
func (s DepositStatus) IsIntermediate() bool {
	return !s.IsTerminal()
}

// AggregatedDepositStatus tracks a whole submission across its deposits.
type AggregatedDepositStatus string

const (
	AggregatedStatusNotStarted AggregatedDepositStatus = "not-started"
	AggregatedStatusInProgress AggregatedDepositStatus = "in-progress"
	AggregatedStatusAccepted   AggregatedDepositStatus = "accepted"
	AggregatedStatusFailed     AggregatedDepositStatus = "failed"
)

var aggregatedTerminal = map[AggregatedDepositStatus]bool{
	AggregatedStatusNotStarted: false,
	AggregatedStatusInProgress: false,
	AggregatedStatusAccepted:   true,
	AggregatedStatusFailed:     true,
}

// AggregatedDepositStatuses returns every AggregatedDepositStatus value.
func AggregatedDepositStatuses() []AggregatedDepositStatus {
	return []AggregatedDepositStatus{
		AggregatedStatusNotStarted,
		AggregatedStatusInProgress,
		AggregatedStatusAccepted,
		AggregatedStatusFailed,
	}
}

// Valid reports whether s is a known status.
func (s AggregatedDepositStatus) Valid() bool {
	_, ok := aggregatedTerminal[s]
	return ok
}

// IsTerminal reports whether no further processing occurs from s.
func (s AggregatedDepositStatus) IsTerminal() bool {
	return aggregatedTerminal[s]
}

// IsIntermediate reports whether s is expected to transition further.
func (s AggregatedDepositStatus) IsIntermediate() bool {
	return !s.IsTerminal()
}

// AggregateDepositStatuses derives a submission status from its deposits.
// The submission is accepted only when every deposit was accepted, and
// failed once every deposit is terminal but at least one failed.
func AggregateDepositStatuses(statuses []DepositStatus) AggregatedDepositStatus {
	if len(statuses) == 0 {
		return AggregatedStatusNotStarted
	}

	allAccepted := true
	for _, s := range statuses {
		if !s.IsTerminal() {
			return AggregatedStatusInProgress
		}
		if s != DepositStatusAccepted {
			allAccepted = false
		}
	}

	if allAccepted {
		return AggregatedStatusAccepted
	}
	return AggregatedStatusFailed
}
