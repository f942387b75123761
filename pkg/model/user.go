package model

import (
	"time"
)

// AdminAccount represents an admin with web API access. The chat ID doubles
// as the owner key for every URL the admin monitors.
type AdminAccount struct {
	ID           int       `json:"id" db:"id"`
	ChatID       int64     `json:"chat_id" db:"chat_id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// AdminCredentials is used for login requests
type AdminCredentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued API token
type LoginResponse struct {
	Token  string `json:"token"`
	ChatID int64  `json:"chat_id"`
}
