package models

import "time"

type Group struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"size:120;not null"`
	Description string `json:"description" gorm:"size:2000"`

	CreatedBy uint  `json:"createdBy" gorm:"not null;index"`
	Creator   *User `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`

	PublicLink bool    `json:"publicLink" gorm:"default:false;index"`
	LinkUID    *string `json:"linkUid" gorm:"uniqueIndex;size:64"`

	Members []GroupMember `json:"members" gorm:"foreignKey:GroupID"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MembershipStatus distinguishes approved members from public-link joiners
// still waiting on a group admin.
type MembershipStatus string

const (
	MembershipActive          MembershipStatus = "active"
	MembershipPendingApproval MembershipStatus = "pendingApproval"
)

type GroupMember struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	GroupID uint   `json:"groupID" gorm:"not null;uniqueIndex:idx_group_members_group_user"`
	Group   *Group `json:"-" gorm:"foreignKey:GroupID"`

	UserID uint `json:"userID" gorm:"not null;uniqueIndex:idx_group_members_group_user"`
	User   User `json:"user" gorm:"foreignKey:UserID"`

	JoinedAt         time.Time `json:"joinedAt"`
	NeedAdminApprove bool      `json:"needAdminApprove" gorm:"default:false;index"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (m *GroupMember) Status() MembershipStatus {
	if m.NeedAdminApprove {
		return MembershipPendingApproval
	}
	return MembershipActive
}
