package utils

import (
	"errors"

	"gorm.io/gorm"
)

// ErrTokenSpace is returned when repeated draws keep colliding, which with
// 128-bit tokens means something is wrong with the randomness source.
var ErrTokenSpace = errors.New("could not generate a unique token")

const maxUIDAttempts = 10

// UniqueToken draws 32-hex-character tokens until one does not collide with
// the given column of model's table, giving up after a bounded number of
// attempts.
func UniqueToken(db *gorm.DB, model interface{}, column string) (string, error) {
	for attempts := 0; attempts < maxUIDAttempts; attempts++ {
		token := GenerateShortToken(16)
		if token == "" {
			continue
		}
		var count int64
		if err := db.Model(model).Where(column+" = ?", token).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return token, nil
		}
	}
	return "", ErrTokenSpace
}
