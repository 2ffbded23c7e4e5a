package db

import (
	"gorm.io/gorm"
)

// Media types and processing states.
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"

	MediaStatusProcessing = "processing"
	MediaStatusReady      = "ready"
	MediaStatusFailed     = "failed"
)

// Media is an uploaded file owned by a brand. Images become ready at
// upload time; videos stay processing until the worker has probed them
// and extracted a poster frame.
type Media struct {
	gorm.Model
	BrandID          uint  `gorm:"index;not null"`
	Brand            Brand `json:"brand,omitempty"`
	UserID           uint  `gorm:"index;not null"`
	User             User  `json:"user,omitempty"`
	Type             string
	OriginalFilename string
	Path             string
	MimeType         string
	Size             int64 `gorm:"not null;default:0"`
	Width            int
	Height           int
	Duration         int
	Thumbnails       map[string]string `gorm:"serializer:json"`
	Status           string            `gorm:"index;not null;default:processing"`
}

func (m *Media) IsImage() bool {
	return m.Type == MediaTypeImage
}

func (m *Media) IsVideo() bool {
	return m.Type == MediaTypeVideo
}

func (m *Media) IsReady() bool {
	return m.Status == MediaStatusReady
}
