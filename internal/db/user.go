package db

import (
	"gorm.io/gorm"
)

// User roles within an agency.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleCreator  = "creator"
	RoleReviewer = "reviewer"
)

// User is a member of an agency.
type User struct {
	gorm.Model
	AgencyID uint   `gorm:"index;not null"`
	Agency   Agency `json:"agency,omitempty"`
	Name     string `gorm:"not null"`
	Email    string `gorm:"uniqueIndex;not null"`
	Password string `gorm:"not null" json:"-"`
	Role     string `gorm:"not null;default:creator"`
	Avatar   string

	Brands []Brand `gorm:"many2many:brand_users;" json:"brands,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsManager reports whether the user manages the whole agency
// (admins included).
func (u *User) IsManager() bool {
	return u.Role == RoleAdmin || u.Role == RoleManager
}

// CanReview reports whether the user may act on approval requests.
func (u *User) CanReview() bool {
	switch u.Role {
	case RoleAdmin, RoleManager, RoleReviewer:
		return true
	}
	return false
}

// HasBrandAccess reports whether the user may act on the brand. Managers
// reach every brand of their agency; everyone else needs an explicit
// brand assignment, so Brands must be preloaded for them.
func (u *User) HasBrandAccess(brand *Brand) bool {
	if brand == nil {
		return false
	}
	if brand.AgencyID != u.AgencyID {
		return false
	}
	if u.IsManager() {
		return true
	}
	for _, b := range u.Brands {
		if b.ID == brand.ID {
			return true
		}
	}
	return false
}

// BrandIDs returns the ids of the brands the user can act on. For
// managers the caller is expected to query by agency instead.
func (u *User) BrandIDs() []uint {
	ids := make([]uint, 0, len(u.Brands))
	for _, b := range u.Brands {
		ids = append(ids, b.ID)
	}
	return ids
}
