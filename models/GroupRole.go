package models

import (
	"encoding/json"
	"time"

	"golang.org/x/exp/slices"
	"gorm.io/datatypes"
)

const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleMember    = "member"
)

// Capability tags stored in GroupRole.Permissions.
const (
	CapAll             = "all"
	CapManageGroup     = "manage_group"
	CapManageMembers   = "manage_members"
	CapManageRoles     = "manage_roles"
	CapDeleteGroup     = "delete_group"
	CapModerateContent = "moderate_content"
	CapViewGroup       = "view_group"
	CapParticipate     = "participate"
)

// CapabilitySet is the decoded form of a role's permissions column.
type CapabilitySet []string

func (s CapabilitySet) Has(tag string) bool {
	return slices.Contains(s, CapAll) || slices.Contains(s, tag)
}

// GroupRole is static reference data seeded at migration time.
type GroupRole struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"uniqueIndex;size:32;not null"`
	Description string         `json:"description" gorm:"size:256"`
	Permissions datatypes.JSON `json:"permissions"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r *GroupRole) Capabilities() CapabilitySet {
	var caps CapabilitySet
	if r.Permissions != nil {
		json.Unmarshal(r.Permissions, &caps)
	}
	return caps
}

// UserGroupRole assigns a GroupRole to a user within one group.
type UserGroupRole struct {
	ID      uint `json:"id" gorm:"primaryKey"`
	UserID  uint `json:"userID" gorm:"not null;uniqueIndex:idx_user_group_roles_triple"`
	GroupID uint `json:"groupID" gorm:"not null;uniqueIndex:idx_user_group_roles_triple"`
	RoleID  uint `json:"roleID" gorm:"not null;uniqueIndex:idx_user_group_roles_triple"`

	User  User      `json:"-" gorm:"foreignKey:UserID"`
	Group Group     `json:"-" gorm:"foreignKey:GroupID"`
	Role  GroupRole `json:"role" gorm:"foreignKey:RoleID"`

	AssignedBy uint      `json:"assignedBy"`
	AssignedAt time.Time `json:"assignedAt"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
