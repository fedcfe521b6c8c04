package models

type User struct {
	BaseModel
	Email          string          `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash   string          `json:"-" gorm:"type:text;not null"`
	FirstName      string          `json:"firstName" gorm:"type:varchar(50);not null"`
	LastName       string          `json:"lastName" gorm:"type:varchar(50);not null"`
	Phone          *string         `json:"phone,omitempty" gorm:"type:varchar(20)"`
	PrivacyEnabled bool            `json:"privacyEnabled" gorm:"not null;default:false"`
	AvatarFilename *string         `json:"avatarFilename,omitempty" gorm:"type:text"`
	Roles          []Role          `json:"-" gorm:"many2many:user_roles"`
	Tickets        []SupportTicket `json:"-" gorm:"foreignKey:UserID"`
}

// RoleNames flattens the role associations into plain names.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		names = append(names, string(role.Name))
	}
	return names
}

// HasRole reports whether the user's role set contains the given name.
// Role checks are union-based: holding ADMIN alongside USER still counts
// as admin.
func (u *User) HasRole(name RoleName) bool {
	for _, role := range u.Roles {
		if role.Name == name {
			return true
		}
	}
	return false
}

// Authorities maps the role set to ROLE_<NAME> routing tags. A user with
// zero roles authenticates but satisfies no role-gated route.
func (u *User) Authorities() []string {
	tags := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		tags = append(tags, role.Name.Authority())
	}
	return tags
}
