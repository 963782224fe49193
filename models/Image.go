package models

import "time"

// Image types match the event picture slots they decorate.
const (
	ImageTypeListItem    = "list_item"
	ImageTypeHeader      = "header"
	ImageTypeBackground  = "background"
	ImageTypeInvitePaper = "invite_paper"
)

func ValidImageType(t string) bool {
	switch t {
	case ImageTypeListItem, ImageTypeHeader, ImageTypeBackground, ImageTypeInvitePaper:
		return true
	}
	return false
}

// Image stores metadata for pictures hosted elsewhere; the server never
// touches the bytes.
type Image struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	UID      string `json:"uid" gorm:"uniqueIndex;size:64;not null"`
	URL      string `json:"url" gorm:"size:512;not null"`
	ThumbURL string `json:"thumbUrl" gorm:"size:512"`
	Width    *int   `json:"width"`
	Height   *int   `json:"height"`
	Type     string `json:"type" gorm:"size:32;index"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
