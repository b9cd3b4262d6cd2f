package models

import "time"

type Role string

const (
	RoleNone   Role = ""
	RoleMember Role = "member"
	RoleExpert Role = "expert"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the assignable roles.
func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleExpert, RoleAdmin:
		return true
	}
	return false
}

// ClassMembership holds the single role a user has in a class. The composite
// primary key makes a second role for the same pair unrepresentable.
type ClassMembership struct {
	ClassID  string    `gorm:"type:varchar(36);primaryKey" json:"class_id"`
	UserID   string    `gorm:"type:varchar(36);primaryKey;index" json:"user_id"`
	Role     Role      `gorm:"type:varchar(20);not null" json:"role"`
	JoinedAt time.Time `json:"joined_at"`

	// Relations
	Class Class `gorm:"foreignKey:ClassID" json:"-"`
	User  User  `gorm:"foreignKey:UserID" json:"-"`
}
