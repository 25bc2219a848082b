package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	PublicID     string             `json:"public_id" bson:"public_id"`
	Email        string             `json:"email" bson:"email"`
	Name         string             `json:"name" bson:"name"`
	PasswordHash string             `json:"-" bson:"password_hash"`
	Hearts       []string           `json:"hearts" bson:"hearts"`
	ResetToken   string             `json:"-" bson:"reset_token,omitempty"`
	ResetExpiry  time.Time          `json:"-" bson:"reset_expiry,omitempty"`
}

// HasHearted reports whether the store id is in the user's hearts.
func (u *User) HasHearted(storeID string) bool {
	for _, id := range u.Hearts {
		if id == storeID {
			return true
		}
	}
	return false
}
