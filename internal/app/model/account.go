package model

import "time"

// Account is a credential holder owning zero or more links.
type Account struct {
	ID           string    `db:"id" gorm:"primaryKey;size:36"`
	Email        string    `db:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string    `db:"password_hash" gorm:"size:255;not null"`
	Tier         string    `db:"tier" gorm:"size:50;not null;default:free"`
	Active       bool      `db:"active" gorm:"not null;default:true"`
	CreatedAt    time.Time `db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `db:"updated_at" gorm:"autoUpdateTime"`
}
