package db

import (
	"fmt"

	"gorm.io/gorm"
)

// DefaultStorageQuota is the storage allowance for new agencies (5 GB).
const DefaultStorageQuota = int64(5 * 1024 * 1024 * 1024)

// Agency is the tenant organization. It owns users and brands and tracks
// its media storage usage against a quota.
type Agency struct {
	gorm.Model
	Name         string `gorm:"not null"`
	Slug         string `gorm:"index"`
	Logo         string
	Settings     map[string]any `gorm:"serializer:json"`
	StorageQuota int64          `gorm:"not null;default:0"`
	StorageUsed  int64          `gorm:"not null;default:0"`

	Users  []User  `json:"users,omitempty"`
	Brands []Brand `json:"brands,omitempty"`
}

// HasStorageAvailable reports whether bytes more of storage fit in the
// agency quota.
func (a *Agency) HasStorageAvailable(bytes int64) bool {
	return a.StorageUsed+bytes <= a.StorageQuota
}

// StoragePercentage returns used storage as a percentage of the quota,
// rounded to one decimal.
func (a *Agency) StoragePercentage() float64 {
	if a.StorageQuota <= 0 {
		return 0
	}
	pct := float64(a.StorageUsed) / float64(a.StorageQuota) * 100
	return float64(int(pct*10+0.5)) / 10
}

// FormatBytes renders a byte count for humans.
func FormatBytes(bytes int64) string {
	switch {
	case bytes >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(1<<30))
	case bytes >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(1<<20))
	case bytes >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(1<<10))
	}
	return fmt.Sprintf("%d B", bytes)
}
