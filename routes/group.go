package routes

import (
	"net/http"

	"gatherings-server/authz"
	"gatherings-server/models"
	"gatherings-server/storage"
	"gatherings-server/utils"

	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
)

// ListGroups - GET /api/groups
// Returns the caller's groups (with their role in each) alongside the full
// group directory, so clients can render "my groups" and "discover" from one
// call.
func ListGroups(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	ident := authz.IdentityFromToken(claims)

	var memberships []models.GroupMember
	err := storage.DB.Preload("Group").
		Where("user_id = ?", ident.UserID).
		Order("joined_at DESC").
		Find(&memberships).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	userGroups := make([]iris.Map, 0, len(memberships))
	for i := range memberships {
		m := &memberships[i]
		role, err := authz.EffectiveRole(storage.DB, ident, m.GroupID)
		if err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		userGroups = append(userGroups, iris.Map{
			"group":    m.Group,
			"joinedAt": m.JoinedAt,
			"status":   m.Status(),
			"role":     role,
		})
	}

	var allGroups []models.Group
	if err := storage.DB.Order("name ASC").Find(&allGroups).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"userGroups":    userGroups,
		"allGroups":     allGroups,
		"isGlobalAdmin": ident.IsAdmin,
	})
}

type createGroupInput struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=2000"`
	PublicLink  bool   `json:"publicLink"`
}

// CreateGroup - POST /api/groups
func CreateGroup(ctx iris.Context) {
	var input createGroupInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	group, err := authz.CreateGroup(storage.DB, authz.IdentityFromToken(claims), input.Name, input.Description, input.PublicLink)
	if err != nil {
		authz.Respond(ctx, err)
		return
	}

	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(group)
}

// GetGroup - GET /api/groups/{id}
// Members see the roster with each member's role; the caller's own effective
// role rides along so clients can show or hide management controls.
func GetGroup(ctx iris.Context) {
	group, ok := findGroup(ctx)
	if !ok {
		return
	}

	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	ident := authz.IdentityFromToken(claims)

	canView, err := authz.CanViewGroup(storage.DB, ident, group)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if !canView {
		authz.Respond(ctx, authz.ErrForbidden)
		return
	}

	var members []models.GroupMember
	err = storage.DB.Preload("User").
		Where("group_id = ?", group.ID).
		Order("joined_at ASC").
		Find(&members).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var assignments []models.UserGroupRole
	err = storage.DB.Preload("Role").
		Where("group_id = ?", group.ID).
		Find(&assignments).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	roleByUser := make(map[uint]*models.GroupRole, len(assignments))
	for i := range assignments {
		roleByUser[assignments[i].UserID] = &assignments[i].Role
	}

	roster := make([]iris.Map, 0, len(members))
	for i := range members {
		m := &members[i]
		roster = append(roster, iris.Map{
			"user":     m.User,
			"joinedAt": m.JoinedAt,
			"status":   m.Status(),
			"role":     roleByUser[m.UserID],
		})
	}

	userRole, err := authz.EffectiveRole(storage.DB, ident, group.ID)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"group":    group,
		"members":  roster,
		"userRole": userRole,
	})
}

type updateGroupInput struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=2000"`
	PublicLink  *bool  `json:"publicLink"`
}

// UpdateGroup - PUT /api/groups/{id}
// Toggling publicLink on mints a share link if the group never had one;
// toggling it off discards the link so old URLs stop resolving.
func UpdateGroup(ctx iris.Context) {
	group, ok := findGroup(ctx)
	if !ok {
		return
	}

	var input updateGroupInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	canManage, err := authz.CanManageGroup(storage.DB, authz.IdentityFromToken(claims), group)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if !canManage {
		authz.Respond(ctx, authz.ErrForbidden)
		return
	}

	group.Name = input.Name
	group.Description = input.Description
	if input.PublicLink != nil {
		group.PublicLink = *input.PublicLink
		if group.PublicLink && group.LinkUID == nil {
			uid, err := utils.UniqueToken(storage.DB, &models.Group{}, "link_uid")
			if err != nil {
				utils.CreateInternalServerError(ctx)
				return
			}
			group.LinkUID = &uid
		}
		if !group.PublicLink {
			group.LinkUID = nil
		}
	}

	if err := storage.DB.Save(group).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(group)
}

// DeleteGroup - DELETE /api/groups/{id}
func DeleteGroup(ctx iris.Context) {
	group, ok := findGroup(ctx)
	if !ok {
		return
	}

	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	if err := authz.DeleteGroup(storage.DB, authz.IdentityFromToken(claims), group); err != nil {
		authz.Respond(ctx, err)
		return
	}
	ctx.StatusCode(http.StatusNoContent)
}

// findGroup loads the group in the id path parameter, writing the error
// response itself when the parameter is bad or the row is gone.
func findGroup(ctx iris.Context) (*models.Group, bool) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return nil, false
	}

	var group models.Group
	if err := storage.DB.First(&group, id).Error; err != nil {
		authz.Respond(ctx, authz.ErrNotFound)
		return nil, false
	}
	return &group, true
}
