package routes

import (
	"net/http"
	"strings"

	"gatherings-server/authz"
	"gatherings-server/models"
	"gatherings-server/storage"
	"gatherings-server/utils"

	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
)

// ListGroupInvitations - GET /api/groups/{id}/invitations
// Restricted to group managers; invitees read theirs through /api/invitations.
func ListGroupInvitations(ctx iris.Context) {
	group, ok := findGroup(ctx)
	if !ok {
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

	var invitations []models.Invitation
	err = storage.DB.Preload("Inviter").
		Where("group_id = ?", group.ID).
		Order("created_at DESC").
		Find(&invitations).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(invitations)
}

type createInvitationInput struct {
	InvitedEmail string `json:"invitedEmail" validate:"required,email"`
	Description  string `json:"description" validate:"max=500"`
}

// CreateInvitation - POST /api/groups/{id}/invitations
func CreateInvitation(ctx iris.Context) {
	group, ok := findGroup(ctx)
	if !ok {
		return
	}

	var input createInvitationInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	invitation, err := authz.CreateInvitation(storage.DB, authz.IdentityFromToken(claims), group, input.InvitedEmail, input.Description)
	if err != nil {
		authz.Respond(ctx, err)
		return
	}

	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(invitation)
}

// ListMyInvitations - GET /api/invitations
// Pending invitations addressed to the session email.
func ListMyInvitations(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	email := strings.ToLower(claims.Email)

	var invitations []models.Invitation
	err := storage.DB.Preload("Group").Preload("Inviter").
		Where("invited_email = ? AND status = ?", email, models.InvitationPending).
		Order("created_at DESC").
		Find(&invitations).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(invitations)
}

type respondInvitationInput struct {
	Action string `json:"action" validate:"required,oneof=accept decline"`
}

// RespondToInvitation - POST /api/invitations/{id}/respond
func RespondToInvitation(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var input respondInvitationInput
	err = ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	invitation, err := authz.RespondToInvitation(storage.DB, authz.IdentityFromToken(claims), id, input.Action)
	if err != nil {
		authz.Respond(ctx, err)
		return
	}
	ctx.JSON(invitation)
}
