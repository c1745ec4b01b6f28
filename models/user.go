package models

import (
	"time"
)

// User is the owner of exactly one wallet
type User struct {
	ID         int64     `db:"id"`
	Username   string    `db:"username"`
	ReferredBy *int64    `db:"referred_by"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}
