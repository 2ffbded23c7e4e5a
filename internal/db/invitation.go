package db

import (
	"time"

	"gorm.io/gorm"
)

// Invitation lets an agency member bring a new user into the agency by
// email. The token is single use and time boxed.
type Invitation struct {
	gorm.Model
	AgencyID   uint `gorm:"index;not null"`
	Agency     Agency
	InvitedBy  uint `gorm:"not null"`
	Inviter    User `gorm:"foreignKey:InvitedBy"`
	Email      string
	Role       string `gorm:"not null;default:creator"`
	Token      string `gorm:"uniqueIndex;size:64;not null"`
	ExpiresAt  time.Time
	AcceptedAt *time.Time
}

func (i *Invitation) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

func (i *Invitation) IsAccepted() bool {
	return i.AcceptedAt != nil
}

// IsValid reports whether the invitation can still be accepted.
func (i *Invitation) IsValid() bool {
	return !i.IsAccepted() && !i.IsExpired()
}
