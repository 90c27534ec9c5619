package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		wantErr bool
	}{
		{"deposit", Message{Kind: EntityDeposit, EntityID: "dep-1"}, false},
		{"submission", Message{Kind: EntitySubmission, EntityID: "sub-1"}, false},
		{"missing id", Message{Kind: EntityDeposit, EntityID: "  "}, true},
		{"wrong tag", Message{Kind: "grant", EntityID: "g-1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMessage)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTransportError_Retryable(t *testing.T) {
	assert.True(t, (&TransportError{Kind: TransportConnectionFailure}).Retryable())
	assert.True(t, (&TransportError{Kind: TransportTimeout}).Retryable())
	assert.True(t, (&TransportError{Kind: TransportUnknownOutcome}).Retryable())
	assert.False(t, (&TransportError{Kind: TransportAuthFailure}).Retryable())
	assert.False(t, (&TransportError{Kind: TransportRemoteRejected}).Retryable())
}

func TestPackagingError_Retryable(t *testing.T) {
	assert.True(t, NewPackagingError(PackagingCauseIO, assert.AnError).Retryable())
	assert.False(t, NewPackagingError(PackagingCauseUnsupportedOptions, ErrUnsupportedOptions).Retryable())
	assert.False(t, NewPackagingError(PackagingCauseMetadata, assert.AnError).Retryable())

	te, ok := AsTransportError(NewPackagingError(PackagingCauseIO, assert.AnError))
	assert.False(t, ok)
	assert.Nil(t, te)
}
