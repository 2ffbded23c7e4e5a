package db

import (
	"gorm.io/gorm"
)

// Brand is a client account inside an agency. Posts, media and
// collections all belong to a brand.
type Brand struct {
	gorm.Model
	AgencyID         uint   `gorm:"index;not null"`
	Agency           Agency `json:"agency,omitempty"`
	Name             string `gorm:"not null"`
	Slug             string `gorm:"index"`
	Description      string
	Logo             string
	ColorScheme      map[string]any `gorm:"serializer:json"`
	Settings         map[string]any `gorm:"serializer:json"`
	DefaultReviewers []string       `gorm:"serializer:json"`

	Users []User `gorm:"many2many:brand_users;" json:"users,omitempty"`
	Posts []Post `json:"posts,omitempty"`
}
