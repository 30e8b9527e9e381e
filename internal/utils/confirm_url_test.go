package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildConfirmURL(t *testing.T) {
	raw := BuildConfirmURL("https://app.thepoofapp.com", "worker", "tok-123")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "https", u.Scheme)
	require.Equal(t, "app.thepoofapp.com", u.Host)
	require.Equal(t, "/delete-account/confirm", u.Path)
	require.Equal(t, "tok-123", u.Query().Get("pending_token"))
	require.Equal(t, "worker", u.Query().Get("account_type"))
}

func TestBuildConfirmURLEscapesToken(t *testing.T) {
	raw := BuildConfirmURL("https://app.thepoofapp.com", "propertyManager", "a b&c")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "a b&c", u.Query().Get("pending_token"))
	require.Equal(t, "propertyManager", u.Query().Get("account_type"))
}
