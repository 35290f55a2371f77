package domain

import (
	"encoding/json"
	"fmt"
)

// Role is the closed set of staff roles. The numeric codes match the values
// the chain has always persisted: 0 system admin, 1 pharmacy admin, 2 clerk.
type Role int

const (
	RoleSystemAdmin Role = iota
	RolePharmacyAdmin
	RoleClerk
)

// ParseRole converts a persisted role code, rejecting anything outside the set.
func ParseRole(code int) (Role, error) {
	switch r := Role(code); r {
	case RoleSystemAdmin, RolePharmacyAdmin, RoleClerk:
		return r, nil
	default:
		return 0, fmt.Errorf("unknown role code %d", code)
	}
}

// ParseRoleName converts a role label as it appears in API payloads.
func ParseRoleName(name string) (Role, error) {
	switch name {
	case "system-admin":
		return RoleSystemAdmin, nil
	case "pharmacy-admin":
		return RolePharmacyAdmin, nil
	case "clerk":
		return RoleClerk, nil
	default:
		return 0, fmt.Errorf("unknown role %q", name)
	}
}

// Valid reports whether the role is one of the three known variants.
func (r Role) Valid() bool {
	switch r {
	case RoleSystemAdmin, RolePharmacyAdmin, RoleClerk:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	switch r {
	case RoleSystemAdmin:
		return "system-admin"
	case RolePharmacyAdmin:
		return "pharmacy-admin"
	case RoleClerk:
		return "clerk"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

func (r Role) MarshalJSON() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("cannot marshal %s", r)
	}
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		parsed, perr := ParseRoleName(name)
		if perr != nil {
			return perr
		}
		*r = parsed
		return nil
	}
	var code int
	if err := json.Unmarshal(data, &code); err != nil {
		return fmt.Errorf("role must be a label or numeric code")
	}
	parsed, err := ParseRole(code)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
