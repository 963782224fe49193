package routes

import (
	"net/http"
	"path"
	"strings"

	"gatherings-server/authz"
	"gatherings-server/models"
	"gatherings-server/storage"
	"gatherings-server/utils"

	"github.com/kataras/iris/v12"
)

type createImageInput struct {
	URL      string `json:"url" validate:"required,url,max=512"`
	ThumbURL string `json:"thumbUrl" validate:"omitempty,url,max=512"`
	Width    *int   `json:"width"`
	Height   *int   `json:"height"`
	Type     string `json:"type" validate:"required"`
}

// CreateImage - POST /api/images
// Registers externally hosted picture metadata under a fresh short uid. When
// no thumbnail is supplied one is derived from the main URL by filename
// convention.
func CreateImage(ctx iris.Context) {
	var input createImageInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if !models.ValidImageType(input.Type) {
		utils.JSONError(ctx, http.StatusBadRequest, "validation_error", "unknown image type")
		return
	}

	uid, err := utils.UniqueToken(storage.DB, &models.Image{}, "uid")
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	thumb := input.ThumbURL
	if thumb == "" {
		thumb = deriveThumbURL(input.URL)
	}

	image := models.Image{
		UID:      uid,
		URL:      input.URL,
		ThumbURL: thumb,
		Width:    input.Width,
		Height:   input.Height,
		Type:     input.Type,
	}
	if err := storage.DB.Create(&image).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(image)
}

// ListImages - GET /api/images?type=
func ListImages(ctx iris.Context) {
	query := storage.DB.Order("created_at DESC")
	if t := ctx.URLParamDefault("type", ""); t != "" {
		if !models.ValidImageType(t) {
			utils.JSONError(ctx, http.StatusBadRequest, "validation_error", "unknown image type")
			return
		}
		query = query.Where("type = ?", t)
	}

	var images []models.Image
	if err := query.Find(&images).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(images)
}

// GetImage - GET /api/images/{id}
func GetImage(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var image models.Image
	if err := storage.DB.First(&image, id).Error; err != nil {
		authz.Respond(ctx, authz.ErrNotFound)
		return
	}
	ctx.JSON(image)
}

// DeleteImage - DELETE /api/images/{id}
func DeleteImage(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var image models.Image
	if err := storage.DB.First(&image, id).Error; err != nil {
		authz.Respond(ctx, authz.ErrNotFound)
		return
	}
	if err := storage.DB.Delete(&image).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.StatusCode(http.StatusNoContent)
}

// deriveThumbURL inserts a _thumb suffix before the file extension, the
// naming scheme the image pipeline uploads thumbnails under.
func deriveThumbURL(url string) string {
	ext := path.Ext(url)
	if ext == "" {
		return url + "_thumb"
	}
	return strings.TrimSuffix(url, ext) + "_thumb" + ext
}
