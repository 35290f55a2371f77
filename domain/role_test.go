package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for code, want := range map[int]Role{
		0: RoleSystemAdmin,
		1: RolePharmacyAdmin,
		2: RoleClerk,
	} {
		got, err := ParseRole(code)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	for _, code := range []int{-1, 3, 42} {
		_, err := ParseRole(code)
		require.Error(t, err)
	}
}

func TestParseRoleName(t *testing.T) {
	for name, want := range map[string]Role{
		"system-admin":   RoleSystemAdmin,
		"pharmacy-admin": RolePharmacyAdmin,
		"clerk":          RoleClerk,
	} {
		got, err := ParseRoleName(name)
		require.NoError(t, err)
		require.Equal(t, want, got)
		require.Equal(t, name, got.String())
	}

	_, err := ParseRoleName("owner")
	require.Error(t, err)
}

func TestRoleJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(RoleClerk)
	require.NoError(t, err)
	require.JSONEq(t, `"clerk"`, string(data))

	var fromLabel Role
	require.NoError(t, json.Unmarshal([]byte(`"pharmacy-admin"`), &fromLabel))
	require.Equal(t, RolePharmacyAdmin, fromLabel)

	// Numeric codes are accepted for compatibility with stored values.
	var fromCode Role
	require.NoError(t, json.Unmarshal([]byte(`2`), &fromCode))
	require.Equal(t, RoleClerk, fromCode)

	var bad Role
	require.Error(t, json.Unmarshal([]byte(`"owner"`), &bad))
	require.Error(t, json.Unmarshal([]byte(`7`), &bad))

	_, err = json.Marshal(Role(9))
	require.Error(t, err)
}
