// Package authz holds the group authorization model: the permission
// evaluator and the membership/invitation lifecycle managers. Everything is
// a stateless function over the database; callers pass the *gorm.DB so
// multi-step transitions can run inside one transaction.
package authz

import (
	"errors"

	"gatherings-server/models"
	"gatherings-server/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Identity is the verified caller supplied by the token middleware.
type Identity struct {
	UserID  uint
	Email   string
	IsAdmin bool
}

func IdentityFromToken(tok *utils.AccessToken) Identity {
	return Identity{UserID: tok.ID, Email: tok.Email, IsAdmin: tok.IsAdmin}
}

// Membership returns the caller's membership row for the group, or nil when
// there is none.
func Membership(db *gorm.DB, userID, groupID uint) (*models.GroupMember, error) {
	var member models.GroupMember
	err := db.Where("user_id = ? AND group_id = ?", userID, groupID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func assignedRole(db *gorm.DB, userID, groupID uint) (*models.GroupRole, error) {
	var ugr models.UserGroupRole
	err := db.Preload("Role").
		Where("user_id = ? AND group_id = ?", userID, groupID).
		First(&ugr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ugr.Role, nil
}

// EffectiveRole resolves the role the caller acts under within a group. A
// global admin without a persisted assignment gets a synthetic admin role so
// management actions are exposed; the synthetic row is never written back.
func EffectiveRole(db *gorm.DB, ident Identity, groupID uint) (*models.GroupRole, error) {
	role, err := assignedRole(db, ident.UserID, groupID)
	if err != nil {
		return nil, err
	}
	if role == nil && ident.IsAdmin {
		return &models.GroupRole{
			Name:        models.RoleAdmin,
			Permissions: datatypes.JSON(`["all"]`),
		}, nil
	}
	return role, nil
}

// EffectivePermissions combines the global admin flag and the per-group role
// into a single capability set.
func EffectivePermissions(db *gorm.DB, ident Identity, groupID uint) (models.CapabilitySet, error) {
	role, err := EffectiveRole(db, ident, groupID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return models.CapabilitySet{}, nil
	}
	return role.Capabilities(), nil
}

// CanManageGroup reports whether the caller may mutate the group and its
// membership: global admin, group creator, or holder of the group admin role.
func CanManageGroup(db *gorm.DB, ident Identity, group *models.Group) (bool, error) {
	if ident.IsAdmin || ident.UserID == group.CreatedBy {
		return true, nil
	}
	role, err := assignedRole(db, ident.UserID, group.ID)
	if err != nil {
		return false, err
	}
	return role != nil && role.Name == models.RoleAdmin, nil
}

// CanManageEvent reports whether the caller may mutate an event: its creator
// or anyone who can manage the owning group.
func CanManageEvent(db *gorm.DB, ident Identity, event *models.Event) (bool, error) {
	if ident.UserID == event.CreatedBy {
		return true, nil
	}
	var group models.Group
	if err := db.First(&group, event.GroupID).Error; err != nil {
		return false, err
	}
	return CanManageGroup(db, ident, &group)
}

// CanViewGroup reports whether the caller may read a group: public-link
// groups are open, otherwise a membership row or the global admin flag is
// required.
func CanViewGroup(db *gorm.DB, ident Identity, group *models.Group) (bool, error) {
	if group.PublicLink || ident.IsAdmin {
		return true, nil
	}
	member, err := Membership(db, ident.UserID, group.ID)
	if err != nil {
		return false, err
	}
	return member != nil, nil
}
