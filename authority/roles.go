package authority

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Role is the closed set of roles known by the service, ordered by authority.
type Role string

const (
	Consultant    Role = "consultant"
	ProjectOwner  Role = "project_owner"
	Administrator Role = "administrator"
	Directeur     Role = "directeur"
)

var Roles = []Role{Consultant, ProjectOwner, Administrator, Directeur}

func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role '%s'", s)
}

// Rank returns the authority level of the role, 0 for an unknown role.
func (r Role) Rank() int {
	switch r {
	case Consultant:
		return 1
	case ProjectOwner:
		return 2
	case Administrator:
		return 3
	case Directeur:
		return 4
	}
	return 0
}

func (r Role) Valid() bool {
	return r.Rank() > 0
}

func (r Role) AtLeast(o Role) bool {
	return r.Valid() && r.Rank() >= o.Rank()
}

// CanViewRealCost reports whether the role may read CJR data.
func (r Role) CanViewRealCost() bool {
	return r == Directeur
}

// BypassesOwnership reports whether the role acts on any project regardless of ownership.
func (r Role) BypassesOwnership() bool {
	switch r {
	case Administrator, Directeur:
		return true
	case Consultant, ProjectOwner:
		return false
	}
	return false
}

// CanManageProjects covers project creation and intervention allocation.
func (r Role) CanManageProjects() bool {
	return r.AtLeast(ProjectOwner)
}

func (r Role) CanManageUsers() bool {
	return r.AtLeast(Administrator)
}

func (r Role) String() string {
	return string(r)
}

func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	role, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = role
	return nil
}

func (r Role) Value() (driver.Value, error) {
	return string(r), nil
}

func (r *Role) Scan(v interface{}) error {
	var s string
	switch value := v.(type) {
	case string:
		s = value
	case []byte:
		s = string(value)
	default:
		return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
	}
	role, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = role
	return nil
}
