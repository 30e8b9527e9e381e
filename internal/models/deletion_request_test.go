package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseAccountType(t *testing.T) {
	at, err := ParseAccountType("worker")
	require.NoError(t, err)
	require.Equal(t, AccountTypeWorker, at)

	at, err = ParseAccountType("propertyManager")
	require.NoError(t, err)
	require.Equal(t, AccountTypePropertyManager, at)

	_, err = ParseAccountType("admin")
	require.Error(t, err)

	_, err = ParseAccountType("Worker")
	require.Error(t, err)
}

func TestStatusIsTerminal(t *testing.T) {
	require.False(t, StatusPending.IsTerminal())
	require.True(t, StatusConsumed.IsTerminal())
	require.True(t, StatusExpired.IsTerminal())
	require.True(t, StatusInvalidated.IsTerminal())
}

func TestExpired(t *testing.T) {
	d := DeletionRequest{ExpiresAt: time.Now().Add(time.Minute)}
	require.False(t, d.Expired(time.Now()))
	require.True(t, d.Expired(time.Now().Add(2*time.Minute)))
}
