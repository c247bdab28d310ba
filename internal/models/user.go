package models

import (
	"gorm.io/gorm"
)

// User is the participant directory entry: Discord identity plus the display
// fields (username, avatar) rendered next to votes.
type User struct {
	gorm.Model
	DiscordID string `gorm:"uniqueIndex"`
	Username  string
	Email     string
	Avatar    string
}
