package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User statuses. Away and busy are explicit, set through profile
// updates; online/offline follow the presence registry.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
	StatusAway    = "away"
	StatusBusy    = "busy"
)

// User struct
type User struct {
	gorm.Model
	UserID    string    `gorm:"uniqueIndex;not null" json:"userId"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Avatar    string    `json:"avatar"`
	Status    string    `gorm:"not null;default:offline" json:"status"`
	LastSeen  time.Time `json:"lastSeen"`
	Role      string    `json:"role"`

	Otp_enabled bool `gorm:"default:false;"`
	Otp_secret  string
}

// DisplayName is the identity shown in chats and captured into
// forwarded-message provenance.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.LastName + " " + u.FirstName)
	if name == "" {
		return u.Username
	}
	return name
}
