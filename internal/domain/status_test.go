package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDepositStatus_ClassificationIsExclusive(t *testing.T) {
	for _, s := range DepositStatuses() {
		t.Run(string(s), func(t *testing.T) {
			assert.True(t, s.Valid())
			assert.NotEqual(t, s.IsTerminal(), s.IsIntermediate())
		})
	}
}

func TestDepositStatus_EnumerationMatchesPartition(t *testing.T) {
	assert.Len(t, DepositStatuses(), len(depositTerminal))

	var terminal []DepositStatus
	for _, s := range DepositStatuses() {
		if s.IsTerminal() {
			terminal = append(terminal, s)
		}
	}
	assert.ElementsMatch(t, []DepositStatus{DepositStatusAccepted, DepositStatusFailed}, terminal)
}

func TestDepositStatus_Unknown(t *testing.T) {
	s := DepositStatus("archived")

	assert.False(t, s.Valid())
	assert.False(t, s.IsTerminal())
	assert.True(t, s.IsIntermediate())
}

func TestAggregatedDepositStatus_ClassificationIsExclusive(t *testing.T) {
	assert.Len(t, AggregatedDepositStatuses(), len(aggregatedTerminal))

	for _, s := range AggregatedDepositStatuses() {
		t.Run(string(s), func(t *testing.T) {
			assert.True(t, s.Valid())
			assert.NotEqual(t, s.IsTerminal(), s.IsIntermediate())
		})
	}

	assert.True(t, AggregatedStatusAccepted.IsTerminal())
	assert.True(t, AggregatedStatusFailed.IsTerminal())
	assert.True(t, AggregatedStatusNotStarted.IsIntermediate())
	assert.True(t, AggregatedStatusInProgress.IsIntermediate())
}

func TestAggregateDepositStatuses(t *testing.T) {
	tests := []struct {
		name     string
		statuses []DepositStatus
		expected AggregatedDepositStatus
	}{
		{"no deposits", nil, AggregatedStatusNotStarted},
		{"all accepted", []DepositStatus{DepositStatusAccepted, DepositStatusAccepted}, AggregatedStatusAccepted},
		{"one still retrying", []DepositStatus{DepositStatusAccepted, DepositStatusRetrying}, AggregatedStatusInProgress},
		{"one submitted", []DepositStatus{DepositStatusSubmitted}, AggregatedStatusInProgress},
		{"terminal with failure", []DepositStatus{DepositStatusAccepted, DepositStatusFailed}, AggregatedStatusFailed},
		{"needs verification", []DepositStatus{DepositStatusFailed, DepositStatusNeedsVerification}, AggregatedStatusInProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AggregateDepositStatuses(tt.statuses))
		})
	}
}
