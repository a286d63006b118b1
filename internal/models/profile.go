package models

import (
	"time"
)

// Profile is the per-user document. Its ID is the owning identity's ID.
type Profile struct {
	ID             string    `bson:"_id" json:"id"`
	Email          string    `bson:"email" json:"email"`
	Name           string    `bson:"name" json:"name"`
	Gender         string    `bson:"gender" json:"gender"`
	Age            string    `bson:"age,omitempty" json:"age,omitempty"`
	Weight         string    `bson:"weight,omitempty" json:"weight,omitempty"`
	Height         string    `bson:"height,omitempty" json:"height,omitempty"`
	BloodGroup     string    `bson:"blood_group,omitempty" json:"blood_group,omitempty"`
	AdditionalInfo string    `bson:"additional_info,omitempty" json:"additional_info,omitempty"`
	PhotoURL       string    `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}
