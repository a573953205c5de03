package models

import "time"

// AdminUser is the single account allowed into the admin panel.
type AdminUser struct {
	Email        string    `json:"email" badgerhold:"key"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	LastLoginAt  time.Time `json:"last_login_at"`
}
