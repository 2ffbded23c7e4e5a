package service

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/vernard/PostReviewer/internal/db"
	"gorm.io/gorm"
)

// BrandService manages the client workspaces inside an agency.
type BrandService struct {
	db *gorm.DB
}

// NewBrandService creates a BrandService instance.
func NewBrandService(gdb *gorm.DB) *BrandService {
	return &BrandService{db: gdb}
}

// BrandInput carries the writable fields of a brand.
type BrandInput struct {
	Name             string
	Description      string
	ColorScheme      map[string]any
	DefaultReviewers []string
	UserIDs          []uint
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugStrip.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// uniqueSlug appends a numeric suffix until the slug is free within the
// agency.
func (s *BrandService) uniqueSlug(agencyID uint, name string, excludeID uint) (string, error) {
	base := slugify(name)
	if base == "" {
		base = "brand"
	}

	slug := base
	for i := 2; ; i++ {
		var count int64
		query := s.db.Model(&db.Brand{}).Where("agency_id = ? AND slug = ?", agencyID, slug)
		if excludeID != 0 {
			query = query.Where("id <> ?", excludeID)
		}
		if err := query.Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = base + "-" + strconv.Itoa(i)
	}
}

// Create makes a new brand. Managers only.
func (s *BrandService) Create(user *db.User, input BrandInput) (*db.Brand, error) {
	if !user.IsManager() {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.New("name is required")
	}

	slug, err := s.uniqueSlug(user.AgencyID, input.Name, 0)
	if err != nil {
		return nil, err
	}

	brand := db.Brand{
		AgencyID:         user.AgencyID,
		Name:             strings.TrimSpace(input.Name),
		Slug:             slug,
		Description:      input.Description,
		ColorScheme:      input.ColorScheme,
		DefaultReviewers: input.DefaultReviewers,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&brand).Error; err != nil {
			return err
		}
		return s.replaceAssignments(tx, &brand, input.UserIDs)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(user, brand.ID)
}

// replaceAssignments swaps the brand's assigned users. Only users from
// the brand's agency are accepted.
func (s *BrandService) replaceAssignments(tx *gorm.DB, brand *db.Brand, userIDs []uint) error {
	if userIDs == nil {
		return nil
	}
	var users []db.User
	if err := tx.Where("id IN ? AND agency_id = ?", userIDs, brand.AgencyID).Find(&users).Error; err != nil {
		return err
	}
	if len(users) != len(userIDs) {
		return ErrResourceMismatch
	}
	return tx.Model(brand).Association("Users").Replace(users)
}

// Get loads a brand, enforcing access.
func (s *BrandService) Get(user *db.User, id uint) (*db.Brand, error) {
	var brand db.Brand
	err := s.db.Preload("Users").First(&brand, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBrandNotFound
		}
		return nil, err
	}
	if !user.HasBrandAccess(&brand) {
		return nil, ErrPermissionDenied
	}
	return &brand, nil
}

// List returns the brands the user can see.
func (s *BrandService) List(user *db.User) ([]db.Brand, error) {
	ids, err := accessibleBrandIDs(s.db, user)
	if err != nil {
		return nil, err
	}

	var brands []db.Brand
	if err := s.db.Where("id IN ?", ids).Order("name asc").Find(&brands).Error; err != nil {
		return nil, err
	}
	return brands, nil
}

// Update edits a brand. Managers only.
func (s *BrandService) Update(user *db.User, id uint, input BrandInput) (*db.Brand, error) {
	if !user.IsManager() {
		return nil, ErrPermissionDenied
	}
	brand, err := s.Get(user, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"description": input.Description,
	}
	if name := strings.TrimSpace(input.Name); name != "" && name != brand.Name {
		slug, err := s.uniqueSlug(brand.AgencyID, name, brand.ID)
		if err != nil {
			return nil, err
		}
		updates["name"] = name
		updates["slug"] = slug
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(brand).Updates(updates).Error; err != nil {
			return err
		}
		if input.DefaultReviewers != nil {
			if err := tx.Model(brand).
				Select("DefaultReviewers").
				Updates(db.Brand{DefaultReviewers: input.DefaultReviewers}).Error; err != nil {
				return err
			}
		}
		if input.ColorScheme != nil {
			if err := tx.Model(brand).
				Select("ColorScheme").
				Updates(db.Brand{ColorScheme: input.ColorScheme}).Error; err != nil {
				return err
			}
		}
		return s.replaceAssignments(tx, brand, input.UserIDs)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(user, id)
}

// Delete removes a brand and everything under it. Managers only.
func (s *BrandService) Delete(user *db.User, id uint) error {
	if !user.IsManager() {
		return ErrPermissionDenied
	}
	brand, err := s.Get(user, id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(brand).Association("Users").Clear(); err != nil {
			return err
		}
		if err := tx.Where("brand_id = ?", brand.ID).Delete(&db.Collection{}).Error; err != nil {
			return err
		}
		if err := tx.Where("brand_id = ?", brand.ID).Delete(&db.Post{}).Error; err != nil {
			return err
		}
		return tx.Delete(brand).Error
	})
}
