package routes

import (
	"net/http"

	"gatherings-server/authz"
	"gatherings-server/storage"
	"gatherings-server/utils"

	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
)

// JoinGroup - POST /api/groups/{id}/members
// Direct self-service join; the caller lands as an active member.
func JoinGroup(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	member, err := authz.JoinGroup(storage.DB, authz.IdentityFromToken(claims), id)
	if err != nil {
		authz.Respond(ctx, err)
		return
	}

	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(member)
}

// LeaveGroup - DELETE /api/groups/{id}/members
func LeaveGroup(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	if err := authz.LeaveGroup(storage.DB, authz.IdentityFromToken(claims), id); err != nil {
		authz.Respond(ctx, err)
		return
	}
	ctx.StatusCode(http.StatusNoContent)
}

// ApproveMember - POST /api/groups/{id}/members/{userID}/approve
// Clears the pending flag and grants the member role in one transaction.
func ApproveMember(ctx iris.Context) {
	group, ok := findGroup(ctx)
	if !ok {
		return
	}
	targetID, err := ctx.Params().GetUint("userID")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid user id")
		return
	}

	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	if err := authz.ApproveMember(storage.DB, authz.IdentityFromToken(claims), group, targetID); err != nil {
		authz.Respond(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"approved": true})
}

// DeclineMember - DELETE /api/groups/{id}/members/{userID}/decline
// Removes a pending membership; approved members are out of reach here and
// must leave on their own.
func DeclineMember(ctx iris.Context) {
	group, ok := findGroup(ctx)
	if !ok {
		return
	}
	targetID, err := ctx.Params().GetUint("userID")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid user id")
		return
	}

	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	if err := authz.DeclineMember(storage.DB, authz.IdentityFromToken(claims), group, targetID); err != nil {
		authz.Respond(ctx, err)
		return
	}
	ctx.StatusCode(http.StatusNoContent)
}
