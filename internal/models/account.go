// internal/models/account.go
package models

import (
	"golang.org/x/crypto/bcrypt"
)

// Account is the profile row of one actor. The role is chosen at sign-up
// and cannot change through the ordinary update path.
type Account struct {
	BaseModel
	Email        string `json:"email" gorm:"uniqueIndex;size:255;not null" validate:"required"`
	PasswordHash string `json:"-" gorm:"size:255;not null"`
	FullName     string `json:"full_name" gorm:"size:255;not null" validate:"required"`
	Phone        string `json:"phone,omitempty" gorm:"size:32"`
	Role         Role   `json:"role" gorm:"type:varchar(20);not null;index" validate:"role"`
	Locale       string `json:"locale" gorm:"size:10;not null"`
	Region       string `json:"region,omitempty" gorm:"size:100;index"`
	AvatarURL    string `json:"avatar_url,omitempty" gorm:"type:text"`
	IsActive     bool   `json:"is_active" gorm:"not null"`
}

func (a *Account) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hashedPassword)
	return nil
}

func (a *Account) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password))
}
