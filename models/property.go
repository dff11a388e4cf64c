package models

import (
	"time"

	"gorm.io/datatypes"
)

type Property struct {
	ID            string                      `json:"id"            gorm:"primaryKey;size:36"`
	Slug          string                      `json:"slug"          gorm:"size:120;index"`
	Title         string                      `json:"title"         gorm:"not null"        validate:"required,max=200"`
	Description   string                      `json:"description"`
	Location      string                      `json:"location"      gorm:"not null"        validate:"required"`
	PricePerNight int64                       `json:"price_per_night" gorm:"not null"      validate:"gt=0"`
	MaxGuests     int                         `json:"max_guests"    gorm:"not null"        validate:"min=1"`
	Bedrooms      int                         `json:"bedrooms"                             validate:"min=0"`
	Bathrooms     int                         `json:"bathrooms"                            validate:"min=0"`
	Amenities     datatypes.JSONSlice[string] `json:"amenities"`
	Images        datatypes.JSONSlice[string] `json:"images"                               validate:"dive,url"`
	IsActive      bool                        `json:"is_active"     gorm:"not null"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}
