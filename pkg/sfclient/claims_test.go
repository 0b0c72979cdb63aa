package sfclient

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClaimSet_Resolve(t *testing.T) {
	t.Parallel()

	cs := ClaimSet{
		{Type: "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name", Value: "Alice"},
		{Type: "HTTP://SCHEMAS.XMLSOAP.ORG/ws/2005/05/identity/claims/emailaddress", Value: ""},
		{Type: DefaultClaimType, Value: "alice@example.com"},
		{Type: DefaultClaimType, Value: "second@example.com"},
	}

	got, err := cs.Resolve(DefaultClaimType)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", got)

	_, err = cs.Resolve("urn:oid:0.9.2342.19200300.100.1.1")
	require.ErrorIs(t, err, ErrClaimNotFound)
	require.Contains(t, err.Error(), "urn:oid:0.9.2342.19200300.100.1.1")

	_, err = ClaimSet(nil).Resolve(DefaultClaimType)
	require.ErrorIs(t, err, ErrClaimNotFound)
}

func TestClaimsFromMap(t *testing.T) {
	t.Parallel()

	cs := ClaimsFromMap(map[string]any{
		"b":      []any{"b1", 7, "b2"},
		"a":      "a1",
		"c":      []string{"c1"},
		"ignore": 42,
	})

	require.Equal(t, ClaimSet{
		{Type: "a", Value: "a1"},
		{Type: "b", Value: "b1"},
		{Type: "b", Value: "b2"},
		{Type: "c", Value: "c1"},
	}, cs)
}
