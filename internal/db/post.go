package db

import (
	"time"

	"gorm.io/gorm"
)

// Post lifecycle states.
const (
	PostStatusDraft            = "draft"
	PostStatusPendingApproval  = "pending_approval"
	PostStatusChangesRequested = "changes_requested"
	PostStatusApproved         = "approved"
	PostStatusArchived         = "archived"
)

// Supported platform targets.
var Platforms = []string{
	"facebook_feed",
	"facebook_story",
	"instagram_feed",
	"instagram_story",
	"instagram_reel",
}

// Post is a content mockup for a brand. Attached media carry a position
// and optional per-platform overrides through the post_media join table.
// Posts are soft deleted.
type Post struct {
	gorm.Model
	BrandID      uint  `gorm:"index;not null"`
	Brand        Brand `json:"brand,omitempty"`
	CollectionID *uint `gorm:"index"`
	CreatedBy    uint  `gorm:"index;not null"`
	Creator      User  `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Title        string
	Caption      string
	Platforms    []string `gorm:"serializer:json"`
	Status       string   `gorm:"index;not null;default:draft"`
	ScheduledFor *time.Time
	Metadata     map[string]any `gorm:"serializer:json"`

	Attachments []PostMedia `json:"attachments,omitempty"`
	Comments    []Comment   `json:"comments,omitempty"`
}

// PostMedia joins a post to a media item with ordering and optional
// per-platform overrides.
type PostMedia struct {
	ID                uint `gorm:"primaryKey"`
	PostID            uint `gorm:"index:idx_post_media,unique;not null"`
	MediaID           uint `gorm:"index:idx_post_media,unique;not null"`
	Media             Media
	Position          int            `gorm:"not null;default:0"`
	PlatformOverrides map[string]any `gorm:"serializer:json"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (p *Post) IsDraft() bool {
	return p.Status == PostStatusDraft
}

func (p *Post) IsPendingApproval() bool {
	return p.Status == PostStatusPendingApproval
}

func (p *Post) IsApproved() bool {
	return p.Status == PostStatusApproved
}

func (p *Post) NeedsChanges() bool {
	return p.Status == PostStatusChangesRequested
}

// CanBeEdited reports whether the post content may still change.
func (p *Post) CanBeEdited() bool {
	return p.Status == PostStatusDraft || p.Status == PostStatusChangesRequested
}

// CanBeSubmittedForApproval reports whether the post may enter a new
// review cycle.
func (p *Post) CanBeSubmittedForApproval() bool {
	return p.Status == PostStatusDraft || p.Status == PostStatusChangesRequested
}

// IsValidPlatform reports whether name is a supported platform target.
func IsValidPlatform(name string) bool {
	for _, p := range Platforms {
		if p == name {
			return true
		}
	}
	return false
}
