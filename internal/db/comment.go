package db

import (
	"time"

	"gorm.io/gorm"
)

// Comment is internal feedback on a post. Top level comments may have
// replies through ParentID. Bodies are markdown.
type Comment struct {
	gorm.Model
	PostID     uint   `gorm:"index;not null"`
	UserID     uint   `gorm:"not null"`
	User       User   `json:"user,omitempty"`
	ParentID   *uint  `gorm:"index"`
	Body       string `gorm:"not null"`
	Attachment string
	ResolvedAt *time.Time

	Replies []Comment `gorm:"foreignKey:ParentID" json:"replies,omitempty"`
}

func (c *Comment) IsResolved() bool {
	return c.ResolvedAt != nil
}
