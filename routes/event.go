package routes

import (
	"net/http"
	"time"

	"gatherings-server/authz"
	"gatherings-server/models"
	"gatherings-server/storage"
	"gatherings-server/utils"

	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
)

// ListEvents - GET /api/events
// Global admins see everything; everyone else sees events from groups they
// belong to.
func ListEvents(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)

	query := storage.DB.Preload("Group").Preload("Creator").Order("start_datetime ASC")
	if !claims.IsAdmin {
		query = query.
			Joins("JOIN group_members ON group_members.group_id = events.group_id").
			Where("group_members.user_id = ?", claims.ID)
	}

	var events []models.Event
	if err := query.Find(&events).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(events)
}

// ListGroupEvents - GET /api/groups/{id}/events
// Membership gated even for public-link groups; outsiders only get the
// public share surface.
func ListGroupEvents(ctx iris.Context) {
	group, ok := findGroup(ctx)
	if !ok {
		return
	}

	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	if !requireGroupMember(ctx, claims, group.ID) {
		return
	}

	var events []models.Event
	err := storage.DB.Preload("Creator").
		Where("group_id = ?", group.ID).
		Order("start_datetime ASC").
		Find(&events).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(events)
}

type eventInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Subtitle    string `json:"subtitle" validate:"max=200"`
	Description string `json:"description"`

	StartDatetime time.Time `json:"startDatetime" validate:"required"`
	EndDatetime   time.Time `json:"endDatetime" validate:"required"`

	Address string   `json:"address" validate:"max=500"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`

	ListItemPicture   string `json:"listItemPicture" validate:"max=512"`
	HeaderPicture     string `json:"headerPicture" validate:"max=512"`
	BackgroundPicture string `json:"backgroundPicture" validate:"max=512"`
	InvitePaperImage  string `json:"invitePaperImage" validate:"max=512"`

	PublicLink    bool   `json:"publicLink"`
	MessengerLink string `json:"messengerLink" validate:"max=512"`
}

// CreateEvent - POST /api/groups/{id}/events
// Requires an approved membership; pending joiners cannot schedule yet.
func CreateEvent(ctx iris.Context) {
	group, ok := findGroup(ctx)
	if !ok {
		return
	}

	var input eventInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if input.EndDatetime.Before(input.StartDatetime) {
		utils.JSONError(ctx, http.StatusBadRequest, "validation_error", "endDatetime must not precede startDatetime")
		return
	}

	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	ident := authz.IdentityFromToken(claims)
	if err := authz.RequireEventCreate(storage.DB, ident, group.ID); err != nil {
		authz.Respond(ctx, err)
		return
	}

	event := models.Event{
		GroupID:           group.ID,
		CreatedBy:         ident.UserID,
		Title:             input.Title,
		Subtitle:          input.Subtitle,
		Description:       input.Description,
		StartDatetime:     input.StartDatetime,
		EndDatetime:       input.EndDatetime,
		Address:           input.Address,
		Lat:               input.Lat,
		Lng:               input.Lng,
		ListItemPicture:   input.ListItemPicture,
		HeaderPicture:     input.HeaderPicture,
		BackgroundPicture: input.BackgroundPicture,
		InvitePaperImage:  input.InvitePaperImage,
		PublicLink:        input.PublicLink,
		MessengerLink:     input.MessengerLink,
	}
	if input.PublicLink {
		uid, err := utils.UniqueToken(storage.DB, &models.Event{}, "link_uid")
		if err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		event.LinkUID = &uid
	}

	if err := storage.DB.Create(&event).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(event)
}

// GetEvent - GET /api/events/{id}
func GetEvent(ctx iris.Context) {
	event, ok := findEvent(ctx)
	if !ok {
		return
	}

	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	if !requireGroupMember(ctx, claims, event.GroupID) {
		return
	}
	ctx.JSON(event)
}

// UpdateEvent - PUT /api/events/{id}
// Only the event creator or a group manager may edit. Toggling publicLink
// mints or discards the share link the same way groups do.
func UpdateEvent(ctx iris.Context) {
	event, ok := findEvent(ctx)
	if !ok {
		return
	}

	var input eventInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if input.EndDatetime.Before(input.StartDatetime) {
		utils.JSONError(ctx, http.StatusBadRequest, "validation_error", "endDatetime must not precede startDatetime")
		return
	}

	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	canManage, err := authz.CanManageEvent(storage.DB, authz.IdentityFromToken(claims), event)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if !canManage {
		authz.Respond(ctx, authz.ErrForbidden)
		return
	}

	event.Title = input.Title
	event.Subtitle = input.Subtitle
	event.Description = input.Description
	event.StartDatetime = input.StartDatetime
	event.EndDatetime = input.EndDatetime
	event.Address = input.Address
	event.Lat = input.Lat
	event.Lng = input.Lng
	event.ListItemPicture = input.ListItemPicture
	event.HeaderPicture = input.HeaderPicture
	event.BackgroundPicture = input.BackgroundPicture
	event.InvitePaperImage = input.InvitePaperImage
	event.MessengerLink = input.MessengerLink

	event.PublicLink = input.PublicLink
	if event.PublicLink && event.LinkUID == nil {
		uid, err := utils.UniqueToken(storage.DB, &models.Event{}, "link_uid")
		if err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		event.LinkUID = &uid
	}
	if !event.PublicLink {
		event.LinkUID = nil
	}

	if err := storage.DB.Save(event).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(event)
}

// DeleteEvent - DELETE /api/events/{id}
func DeleteEvent(ctx iris.Context) {
	event, ok := findEvent(ctx)
	if !ok {
		return
	}

	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	canManage, err := authz.CanManageEvent(storage.DB, authz.IdentityFromToken(claims), event)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if !canManage {
		authz.Respond(ctx, authz.ErrForbidden)
		return
	}

	if err := storage.DB.Delete(&models.Event{}, event.ID).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.StatusCode(http.StatusNoContent)
}

func findEvent(ctx iris.Context) (*models.Event, bool) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return nil, false
	}

	var event models.Event
	if err := storage.DB.First(&event, id).Error; err != nil {
		authz.Respond(ctx, authz.ErrNotFound)
		return nil, false
	}
	return &event, true
}

// requireGroupMember enforces the member-or-global-admin read gate shared by
// the event routes.
func requireGroupMember(ctx iris.Context, claims *utils.AccessToken, groupID uint) bool {
	if claims.IsAdmin {
		return true
	}
	member, err := authz.Membership(storage.DB, claims.ID, groupID)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return false
	}
	if member == nil {
		authz.Respond(ctx, authz.ErrForbidden)
		return false
	}
	return true
}
