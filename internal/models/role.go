package models

type RoleName string

const (
	RoleNameUser  RoleName = "USER"
	RoleNameAdmin RoleName = "ADMIN"
)

// Authority returns the conventional routing tag for a role name.
func (n RoleName) Authority() string {
	return "ROLE_" + string(n)
}

// ParseRoleName validates a role literal against the closed enumeration.
func ParseRoleName(value string) (RoleName, bool) {
	switch RoleName(value) {
	case RoleNameUser, RoleNameAdmin:
		return RoleName(value), true
	default:
		return "", false
	}
}

// Role is a reference table seeded once at startup: at most one row per
// name, never mutated afterwards. Users reference roles through the
// user_roles join table.
type Role struct {
	ID   uint     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name RoleName `json:"name" gorm:"type:varchar(20);uniqueIndex;not null"`
}
