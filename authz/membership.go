package authz

import (
	"errors"
	"time"

	"gatherings-server/models"

	"gorm.io/gorm"
)

// assignRole grants the named role to the user within the group, if not
// already assigned. Roles are seeded reference data, so a missing row is a
// deployment fault, not a caller error.
func assignRole(tx *gorm.DB, userID, groupID uint, roleName string, assignedBy uint) error {
	var role models.GroupRole
	if err := tx.Where("name = ?", roleName).First(&role).Error; err != nil {
		return err
	}

	var existing models.UserGroupRole
	err := tx.Where("user_id = ? AND group_id = ? AND role_id = ?", userID, groupID, role.ID).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return tx.Create(&models.UserGroupRole{
		UserID:     userID,
		GroupID:    groupID,
		RoleID:     role.ID,
		AssignedBy: assignedBy,
		AssignedAt: time.Now(),
	}).Error
}

// JoinGroup adds the caller as an active member with the member role
// (none -> active).
func JoinGroup(db *gorm.DB, ident Identity, groupID uint) (*models.GroupMember, error) {
	var group models.Group
	if err := db.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	existing, err := Membership(db, ident.UserID, groupID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateMembership
	}

	member := models.GroupMember{
		GroupID:          groupID,
		UserID:           ident.UserID,
		JoinedAt:         time.Now(),
		NeedAdminApprove: false,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		return assignRole(tx, ident.UserID, groupID, models.RoleMember, ident.UserID)
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// JoinByPublicLink adds the caller as a pending-approval member of the group
// behind the link (none -> pending-approval). No role is assigned until an
// admin approves.
func JoinByPublicLink(db *gorm.DB, ident Identity, linkUID string) (*models.Group, *models.GroupMember, error) {
	var group models.Group
	err := db.Where("link_uid = ? AND public_link = ?", linkUID, true).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	existing, err := Membership(db, ident.UserID, group.ID)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, ErrDuplicateMembership
	}

	member := models.GroupMember{
		GroupID:          group.ID,
		UserID:           ident.UserID,
		JoinedAt:         time.Now(),
		NeedAdminApprove: true,
	}
	if err := db.Create(&member).Error; err != nil {
		return nil, nil, err
	}
	return &group, &member, nil
}

// LeaveGroup removes the caller's membership and every role assignment for
// the pair (active -> none).
func LeaveGroup(db *gorm.DB, ident Identity, groupID uint) error {
	member, err := Membership(db, ident.UserID, groupID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrNotFound
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.GroupMember{}, member.ID).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND group_id = ?", ident.UserID, groupID).
			Delete(&models.UserGroupRole{}).Error
	})
}

// ApproveMember promotes a pending-approval member to active and grants the
// member role, AssignedBy the approving admin. Only pending memberships can
// be approved through this path.
func ApproveMember(db *gorm.DB, ident Identity, group *models.Group, targetUserID uint) error {
	ok, err := CanManageGroup(db, ident, group)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}

	member, err := Membership(db, targetUserID, group.ID)
	if err != nil {
		return err
	}
	if member == nil || !member.NeedAdminApprove {
		return ErrNotFound
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.GroupMember{}).Where("id = ?", member.ID).
			Update("need_admin_approve", false).Error; err != nil {
			return err
		}
		return assignRole(tx, targetUserID, group.ID, models.RoleMember, ident.UserID)
	})
}

// DeclineMember deletes a pending-approval membership
// (pending-approval -> none). Approved members cannot be removed through
// this path.
func DeclineMember(db *gorm.DB, ident Identity, group *models.Group, targetUserID uint) error {
	ok, err := CanManageGroup(db, ident, group)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}

	member, err := Membership(db, targetUserID, group.ID)
	if err != nil {
		return err
	}
	if member == nil || !member.NeedAdminApprove {
		return ErrNotFound
	}

	return db.Delete(&models.GroupMember{}, member.ID).Error
}
