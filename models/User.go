package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email    string `json:"email" gorm:"uniqueIndex;size:256;not null"`
	Name     string `json:"name" gorm:"size:256"`
	Password string `json:"-"`
	IsAdmin  bool   `json:"isAdmin" gorm:"default:false;index"`
}
