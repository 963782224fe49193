package authz

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gatherings-server/models"

	"gorm.io/gorm"
)

const (
	InvitationActionAccept  = "accept"
	InvitationActionDecline = "decline"
)

// CreateInvitation records a pending invitation for an email address. The
// inviter must be able to manage the group; at most one pending invitation
// may exist per (group, email), and members cannot be re-invited.
func CreateInvitation(db *gorm.DB, ident Identity, group *models.Group, email, description string) (*models.Invitation, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("%w: invited email is required", ErrValidation)
	}

	ok, err := CanManageGroup(db, ident, group)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}

	var memberCount int64
	err = db.Model(&models.GroupMember{}).
		Joins("JOIN users ON users.id = group_members.user_id").
		Where("users.email = ? AND group_members.group_id = ?", email, group.ID).
		Count(&memberCount).Error
	if err != nil {
		return nil, err
	}
	if memberCount > 0 {
		return nil, ErrAlreadyMember
	}

	var pendingCount int64
	err = db.Model(&models.Invitation{}).
		Where("group_id = ? AND invited_email = ? AND status = ?", group.ID, email, models.InvitationPending).
		Count(&pendingCount).Error
	if err != nil {
		return nil, err
	}
	if pendingCount > 0 {
		return nil, ErrDuplicateInvitation
	}

	invitation := models.Invitation{
		GroupID:      group.ID,
		InvitedEmail: email,
		InvitedBy:    ident.UserID,
		Description:  description,
		Status:       models.InvitationPending,
	}
	if err := db.Create(&invitation).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

// RespondToInvitation applies the one-way pending -> accepted/declined
// transition. Only the invited user (matched by session email) may respond.
// Accepting creates an active membership and grants the member role on
// behalf of the original inviter, all in one transaction.
func RespondToInvitation(db *gorm.DB, ident Identity, invitationID uint, action string) (*models.Invitation, error) {
	if action != InvitationActionAccept && action != InvitationActionDecline {
		return nil, fmt.Errorf("%w: action must be %q or %q", ErrValidation, InvitationActionAccept, InvitationActionDecline)
	}

	var invitation models.Invitation
	if err := db.First(&invitation, invitationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !strings.EqualFold(ident.Email, invitation.InvitedEmail) {
		return nil, ErrForbidden
	}
	if invitation.Status != models.InvitationPending {
		return nil, ErrInvalidState
	}

	now := time.Now()

	if action == InvitationActionDecline {
		err := db.Model(&invitation).Updates(map[string]interface{}{
			"status":      models.InvitationDeclined,
			"declined_at": &now,
		}).Error
		if err != nil {
			return nil, err
		}
		return &invitation, nil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&invitation).Updates(map[string]interface{}{
			"status":      models.InvitationAccepted,
			"accepted_at": &now,
		}).Error; err != nil {
			return err
		}

		existing, err := Membership(tx, ident.UserID, invitation.GroupID)
		if err != nil {
			return err
		}
		if existing == nil {
			member := models.GroupMember{
				GroupID:          invitation.GroupID,
				UserID:           ident.UserID,
				JoinedAt:         now,
				NeedAdminApprove: false,
			}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		}

		return assignRole(tx, ident.UserID, invitation.GroupID, models.RoleMember, invitation.InvitedBy)
	})
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}
