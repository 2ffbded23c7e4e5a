package service

import (
	"errors"

	"github.com/vernard/PostReviewer/internal/db"
	"gorm.io/gorm"
)

var ErrBrandNotFound = errors.New("brand not found")

// accessibleBrandIDs resolves the brands the user may see. Managers get
// every brand of their agency; everyone else their explicit assignments.
func accessibleBrandIDs(gdb *gorm.DB, user *db.User) ([]uint, error) {
	if user.IsManager() {
		var ids []uint
		if err := gdb.Model(&db.Brand{}).
			Where("agency_id = ?", user.AgencyID).
			Pluck("id", &ids).Error; err != nil {
			return nil, err
		}
		return ids, nil
	}
	return user.BrandIDs(), nil
}

func loadBrand(gdb *gorm.DB, id uint) (*db.Brand, error) {
	var brand db.Brand
	if err := gdb.First(&brand, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBrandNotFound
		}
		return nil, err
	}
	return &brand, nil
}
