package models

import "time"

const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationDeclined = "declined"
)

// Invitation is an offer of group membership addressed to an email, so it
// can be sent before the invitee has an account.
type Invitation struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	GroupID uint   `json:"groupID" gorm:"not null;index"`
	Group   *Group `json:"group,omitempty" gorm:"foreignKey:GroupID"`

	InvitedEmail string `json:"invitedEmail" gorm:"size:256;not null;index"`
	InvitedBy    uint   `json:"invitedBy" gorm:"not null"`
	Inviter      *User  `json:"inviter,omitempty" gorm:"foreignKey:InvitedBy"`

	Description string `json:"description" gorm:"size:500"`

	// pending, accepted, declined; terminal once responded
	Status     string     `json:"status" gorm:"size:16;index"`
	AcceptedAt *time.Time `json:"acceptedAt"`
	DeclinedAt *time.Time `json:"declinedAt"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
