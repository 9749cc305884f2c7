package authclient_test

import (
	"errors"
	"testing"

	authclient "github.com/goliatone/go-auth-client"
	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	assert.True(t, authclient.IsAuthenticationError(authclient.ErrNotAuthenticated))
	assert.False(t, authclient.IsNetworkError(authclient.ErrNotAuthenticated))

	assert.False(t, authclient.IsAuthenticationError(nil))
	assert.False(t, authclient.IsNetworkError(nil))

	plain := errors.New("boom")
	assert.False(t, authclient.IsAuthenticationError(plain))
	assert.False(t, authclient.IsNetworkError(plain))
}

func TestFailureMessage(t *testing.T) {
	assert.Equal(t, "", authclient.FailureMessage(nil))
	assert.Equal(t, "not authenticated", authclient.FailureMessage(authclient.ErrNotAuthenticated))
	assert.Equal(t, "boom", authclient.FailureMessage(errors.New("boom")))
}
