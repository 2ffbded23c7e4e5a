package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/vernard/PostReviewer/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s-%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(
		&db.Agency{}, &db.User{}, &db.Invitation{}, &db.Brand{}, &db.Media{},
		&db.Post{}, &db.PostMedia{}, &db.Comment{},
		&db.ApprovalRequest{}, &db.ApprovalResponse{}, &db.ApprovalInvite{},
		&db.Collection{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return gdb
}

// stubNotifier records notifications instead of sending mail.
type stubNotifier struct {
	kinds      []string
	recipients []string
	payloads   []map[string]string
}

func (s *stubNotifier) Notify(kind, recipient string, data map[string]string) {
	s.kinds = append(s.kinds, kind)
	s.recipients = append(s.recipients, recipient)
	s.payloads = append(s.payloads, data)
}

func createAgency(t *testing.T, gdb *gorm.DB, name string) *db.Agency {
	t.Helper()
	agency := db.Agency{Name: name, StorageQuota: db.DefaultStorageQuota}
	if err := gdb.Create(&agency).Error; err != nil {
		t.Fatalf("create agency: %v", err)
	}
	return &agency
}

func createUser(t *testing.T, gdb *gorm.DB, agencyID uint, name, role string) *db.User {
	t.Helper()
	user := db.User{
		AgencyID: agencyID,
		Name:     name,
		Email:    fmt.Sprintf("%s-%s-%d@example.com", name, role, time.Now().UnixNano()),
		Password: "irrelevant",
		Role:     role,
	}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return &user
}

func createBrand(t *testing.T, gdb *gorm.DB, agencyID uint, name string) *db.Brand {
	t.Helper()
	brand := db.Brand{AgencyID: agencyID, Name: name, Slug: name}
	if err := gdb.Create(&brand).Error; err != nil {
		t.Fatalf("create brand: %v", err)
	}
	return &brand
}

func createPost(t *testing.T, gdb *gorm.DB, brandID, creatorID uint, title, status string) *db.Post {
	t.Helper()
	post := db.Post{
		BrandID:   brandID,
		CreatedBy: creatorID,
		Title:     title,
		Caption:   "caption for " + title,
		Platforms: []string{"instagram_feed"},
		Status:    status,
	}
	if err := gdb.Create(&post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return &post
}

func createMedia(t *testing.T, gdb *gorm.DB, brandID, userID uint, size int64) *db.Media {
	t.Helper()
	media := db.Media{
		BrandID:          brandID,
		UserID:           userID,
		Type:             db.MediaTypeImage,
		OriginalFilename: "photo.jpg",
		Path:             fmt.Sprintf("photo-%d.jpg", time.Now().UnixNano()),
		MimeType:         "image/jpeg",
		Size:             size,
		Status:           db.MediaStatusReady,
	}
	if err := gdb.Create(&media).Error; err != nil {
		t.Fatalf("create media: %v", err)
	}
	return &media
}

// reloadUser refreshes a user with brand assignments, the shape the
// auth middleware hands to services.
func reloadUser(t *testing.T, gdb *gorm.DB, id uint) *db.User {
	t.Helper()
	var user db.User
	if err := gdb.Preload("Brands").First(&user, id).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	return &user
}

func assignBrand(t *testing.T, gdb *gorm.DB, user *db.User, brand *db.Brand) {
	t.Helper()
	if err := gdb.Model(user).Association("Brands").Append(brand); err != nil {
		t.Fatalf("assign brand: %v", err)
	}
}
