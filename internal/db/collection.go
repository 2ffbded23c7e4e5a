package db

import (
	"time"

	"gorm.io/gorm"
)

// Collection bundles posts from one brand into a single client facing
// review page reached through the collection's own approval token.
type Collection struct {
	gorm.Model
	BrandID                uint   `gorm:"index;not null"`
	Brand                  Brand  `json:"brand,omitempty"`
	CreatedBy              uint   `gorm:"not null"`
	Creator                User   `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Name                   string `gorm:"not null"`
	Description            string
	ApprovalToken          string `gorm:"index;size:64"`
	ApprovalTokenExpiresAt *time.Time
	Metadata               map[string]any `gorm:"serializer:json"`

	Posts []Post `json:"posts,omitempty"`
}

// HasValidApprovalToken reports whether the public approval link is
// currently usable.
func (c *Collection) HasValidApprovalToken() bool {
	return c.ApprovalToken != "" &&
		c.ApprovalTokenExpiresAt != nil &&
		c.ApprovalTokenExpiresAt.After(time.Now())
}

// StatusSummary counts the collection's posts per lifecycle state.
func (c *Collection) StatusSummary() map[string]int {
	summary := map[string]int{
		"total":                    len(c.Posts),
		PostStatusDraft:            0,
		PostStatusPendingApproval:  0,
		PostStatusChangesRequested: 0,
		PostStatusApproved:         0,
	}
	for _, p := range c.Posts {
		if _, ok := summary[p.Status]; ok {
			summary[p.Status]++
		}
	}
	return summary
}

// IsFullyApproved reports whether the collection has posts and every one
// of them is approved.
func (c *Collection) IsFullyApproved() bool {
	if len(c.Posts) == 0 {
		return false
	}
	for _, p := range c.Posts {
		if p.Status != PostStatusApproved {
			return false
		}
	}
	return true
}
