package models

import "time"

type Event struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	GroupID uint   `json:"groupID" gorm:"not null;index"`
	Group   *Group `json:"group,omitempty" gorm:"foreignKey:GroupID"`

	CreatedBy uint  `json:"createdBy" gorm:"not null;index"`
	Creator   *User `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`

	Title       string `json:"title" gorm:"size:200;not null"`
	Subtitle    string `json:"subtitle" gorm:"size:200"`
	Description string `json:"description"`

	StartDatetime time.Time `json:"startDatetime" gorm:"not null;index"`
	EndDatetime   time.Time `json:"endDatetime" gorm:"not null"`

	Address string   `json:"address" gorm:"size:500"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`

	ListItemPicture   string `json:"listItemPicture" gorm:"size:512"`
	HeaderPicture     string `json:"headerPicture" gorm:"size:512"`
	BackgroundPicture string `json:"backgroundPicture" gorm:"size:512"`
	InvitePaperImage  string `json:"invitePaperImage" gorm:"size:512"`

	PublicLink    bool    `json:"publicLink" gorm:"default:false;index"`
	LinkUID       *string `json:"linkUid" gorm:"uniqueIndex;size:64"`
	MessengerLink string  `json:"messengerLink" gorm:"size:512"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
