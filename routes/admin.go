package routes

import (
	"gatherings-server/models"
	"gatherings-server/storage"
	"gatherings-server/utils"
	"net/http"
	"strings"

	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
)

// AdminListUsers - GET /api/admin/users?q=&page=&per_page=
func AdminListUsers(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	var users []models.User
	q := strings.TrimSpace(ctx.URLParamDefault("q", ""))

	query := storage.DB.Model(&models.User{})
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("lower(name) LIKE ? OR lower(email) LIKE ?", like, like)
	}

	var total int64
	query.Count(&total)
	query = query.Order("created_at DESC").Offset((page - 1) * perPage).Limit(perPage)
	if err := query.Find(&users).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.JSONPage(ctx, users, page, perPage, total)
}

type setAdminFlagInput struct {
	IsAdmin *bool `json:"isAdmin" validate:"required"`
}

// AdminSetUserAdmin - PATCH /api/admin/users/{id}/admin
// The admin flag is only mutable by another admin; self-changes are refused.
func AdminSetUserAdmin(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	if claims.ID == id {
		utils.JSONError(ctx, http.StatusForbidden, "forbidden", "cannot change your own admin flag")
		return
	}

	var input setAdminFlagInput
	if err := ctx.ReadJSON(&input); err != nil || input.IsAdmin == nil {
		utils.JSONError(ctx, http.StatusUnprocessableEntity, "invalid_payload", "isAdmin required")
		return
	}

	var user models.User
	if err := storage.DB.First(&user, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "user not found")
		return
	}

	before := user
	user.IsAdmin = *input.IsAdmin
	if err := storage.DB.Save(&user).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.Audit(ctx, "user.set_admin", "user", user.ID, before, user)
	ctx.JSON(iris.Map{"data": iris.Map{"user": user}})
}
