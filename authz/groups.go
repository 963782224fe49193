package authz

import (
	"fmt"
	"time"

	"gatherings-server/models"
	"gatherings-server/utils"

	"gorm.io/gorm"
)

// CreateGroup creates a group owned by the caller and, in the same
// transaction, makes the creator an active member holding the admin role.
// Any authenticated user may create a group.
func CreateGroup(db *gorm.DB, ident Identity, name, description string, publicLink bool) (*models.Group, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", ErrValidation)
	}

	group := models.Group{
		Name:        name,
		Description: description,
		CreatedBy:   ident.UserID,
		PublicLink:  publicLink,
	}
	if publicLink {
		uid, err := utils.UniqueToken(db, &models.Group{}, "link_uid")
		if err != nil {
			return nil, err
		}
		group.LinkUID = &uid
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		member := models.GroupMember{
			GroupID:          group.ID,
			UserID:           ident.UserID,
			JoinedAt:         time.Now(),
			NeedAdminApprove: false,
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		return assignRole(tx, ident.UserID, group.ID, models.RoleAdmin, ident.UserID)
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// DeleteGroup removes the group together with its events, invitations,
// memberships and role assignments. Requires group management rights.
func DeleteGroup(db *gorm.DB, ident Identity, group *models.Group) error {
	ok, err := CanManageGroup(db, ident, group)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", group.ID).Delete(&models.Event{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", group.ID).Delete(&models.Invitation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", group.ID).Delete(&models.UserGroupRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", group.ID).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Group{}, group.ID).Error
	})
}

// RequireEventCreate checks that the caller may create events in the group:
// an active (approved) membership, or the global admin flag.
func RequireEventCreate(db *gorm.DB, ident Identity, groupID uint) error {
	if ident.IsAdmin {
		return nil
	}
	member, err := Membership(db, ident.UserID, groupID)
	if err != nil {
		return err
	}
	if member == nil || member.Status() != models.MembershipActive {
		return ErrForbidden
	}
	return nil
}
