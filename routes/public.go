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

// GetPublicGroup - GET /api/groups/public/{linkUid}
// Unauthenticated share page: the group plus its publicly shared events.
// Resolves only while the group keeps publicLink enabled.
func GetPublicGroup(ctx iris.Context) {
	linkUID := ctx.Params().Get("linkUid")

	var group models.Group
	err := storage.DB.Preload("Creator").
		Where("link_uid = ? AND public_link = ?", linkUID, true).
		First(&group).Error
	if err != nil {
		authz.Respond(ctx, authz.ErrNotFound)
		return
	}

	var events []models.Event
	err = storage.DB.
		Where("group_id = ? AND public_link = ?", group.ID, true).
		Order("start_datetime ASC").
		Find(&events).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"group":  group,
		"events": events,
	})
}

// JoinPublicGroup - POST /api/groups/public/{linkUid}/join
// Authenticated; lands the caller in the pending-approval queue.
func JoinPublicGroup(ctx iris.Context) {
	linkUID := ctx.Params().Get("linkUid")

	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	group, member, err := authz.JoinByPublicLink(storage.DB, authz.IdentityFromToken(claims), linkUID)
	if err != nil {
		authz.Respond(ctx, err)
		return
	}

	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(iris.Map{
		"group":  group,
		"member": member,
	})
}

// GetPublicEvent - GET /api/events/public/{linkUid}
func GetPublicEvent(ctx iris.Context) {
	linkUID := ctx.Params().Get("linkUid")

	var event models.Event
	err := storage.DB.Preload("Group").Preload("Creator").
		Where("link_uid = ? AND public_link = ?", linkUID, true).
		First(&event).Error
	if err != nil {
		authz.Respond(ctx, authz.ErrNotFound)
		return
	}
	ctx.JSON(event)
}
