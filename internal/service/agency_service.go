package service

import (
	"errors"
	"strings"

	"github.com/vernard/PostReviewer/internal/db"
	"gorm.io/gorm"
)

var ErrAgencyNotFound = errors.New("agency not found")

// AgencyService exposes the agency's own profile, storage accounting
// and dashboard numbers.
type AgencyService struct {
	db *gorm.DB
}

// NewAgencyService creates an AgencyService instance.
func NewAgencyService(gdb *gorm.DB) *AgencyService {
	return &AgencyService{db: gdb}
}

// Get loads the caller's agency.
func (s *AgencyService) Get(user *db.User) (*db.Agency, error) {
	var agency db.Agency
	if err := s.db.First(&agency, user.AgencyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgencyNotFound
		}
		return nil, err
	}
	return &agency, nil
}

// Update edits the agency profile. Admins only.
func (s *AgencyService) Update(user *db.User, name, logo string, settings map[string]any) (*db.Agency, error) {
	if !user.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	agency, err := s.Get(user)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		updates["name"] = trimmed
	}
	if logo != "" {
		updates["logo"] = logo
	}
	if len(updates) > 0 {
		if err := s.db.Model(agency).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	if settings != nil {
		if err := s.db.Model(agency).
			Select("Settings").
			Updates(db.Agency{Settings: settings}).Error; err != nil {
			return nil, err
		}
	}
	return s.Get(user)
}

// StorageReport summarises the agency's storage position.
type StorageReport struct {
	Used        int64   `json:"used"`
	Quota       int64   `json:"quota"`
	Percentage  float64 `json:"percentage"`
	IsNearLimit bool    `json:"is_near_limit"`
	Formatted   string  `json:"formatted"`
}

// Storage returns the agency's storage usage against its quota. Usage
// at or past 80% flags is_near_limit.
func (s *AgencyService) Storage(user *db.User) (*StorageReport, error) {
	agency, err := s.Get(user)
	if err != nil {
		return nil, err
	}

	percentage := agency.StoragePercentage()
	return &StorageReport{
		Used:        agency.StorageUsed,
		Quota:       agency.StorageQuota,
		Percentage:  percentage,
		IsNearLimit: percentage >= 80,
		Formatted:   db.FormatBytes(agency.StorageUsed) + " / " + db.FormatBytes(agency.StorageQuota),
	}, nil
}

// RecalculateStorage rebuilds the agency's storage counter from the
// media table. Useful after manual cleanup.
func (s *AgencyService) RecalculateStorage(user *db.User) (*StorageReport, error) {
	if !user.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	var total int64
	err := s.db.Model(&db.Media{}).
		Joins("JOIN brands ON brands.id = media.brand_id").
		Where("brands.agency_id = ?", user.AgencyID).
		Where("media.deleted_at IS NULL").
		Select("COALESCE(SUM(media.size), 0)").
		Scan(&total).Error
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(&db.Agency{}).
		Where("id = ?", user.AgencyID).
		Update("storage_used", total).Error; err != nil {
		return nil, err
	}
	return s.Storage(user)
}

// DashboardStats is the landing-page summary for an agency member.
type DashboardStats struct {
	Brands           int64            `json:"brands"`
	Posts            int64            `json:"posts"`
	PostsByStatus    map[string]int64 `json:"posts_by_status"`
	PendingApprovals int64            `json:"pending_approvals"`
	Collections      int64            `json:"collections"`
	TeamSize         int64            `json:"team_size"`
}

// Dashboard computes headline counts scoped to the brands the user can
// see.
func (s *AgencyService) Dashboard(user *db.User) (*DashboardStats, error) {
	brandIDs, err := accessibleBrandIDs(s.db, user)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		Brands:        int64(len(brandIDs)),
		PostsByStatus: map[string]int64{},
	}

	if err := s.db.Model(&db.Post{}).Where("brand_id IN ?", brandIDs).Count(&stats.Posts).Error; err != nil {
		return nil, err
	}

	rows := []struct {
		Status string
		Count  int64
	}{}
	err = s.db.Model(&db.Post{}).
		Select("status, COUNT(*) as count").
		Where("brand_id IN ?", brandIDs).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.PostsByStatus[row.Status] = row.Count
	}

	err = s.db.Model(&db.ApprovalRequest{}).
		Joins("JOIN posts ON posts.id = approval_requests.post_id").
		Where("posts.brand_id IN ?", brandIDs).
		Where("posts.deleted_at IS NULL").
		Where("approval_requests.status = ?", db.ApprovalStatusPending).
		Count(&stats.PendingApprovals).Error
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(&db.Collection{}).Where("brand_id IN ?", brandIDs).Count(&stats.Collections).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&db.User{}).Where("agency_id = ?", user.AgencyID).Count(&stats.TeamSize).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
