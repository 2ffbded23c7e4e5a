package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vernard/PostReviewer/internal/db"
	"gorm.io/gorm"
)

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrMediaNotFound = errors.New("media not found")
)

// PostService manages mockup posts and their media attachments.
type PostService struct {
	db *gorm.DB
}

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB) *PostService {
	return &PostService{db: gdb}
}

// PostInput carries the writable fields of a post.
type PostInput struct {
	BrandID      uint
	Title        string
	Caption      string
	Platforms    []string
	ScheduledFor *time.Time
	CollectionID *uint
	MediaIDs     []uint
}

// PostFilter describes filters for listing posts.
type PostFilter struct {
	BrandID uint
	Status  string
	Search  string
	Page    int
	PerPage int
}

// PostListResult aggregates paginated posts.
type PostListResult struct {
	Posts      []db.Post
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

func validatePlatforms(platforms []string) error {
	for _, p := range platforms {
		if !db.IsValidPlatform(p) {
			return fmt.Errorf("unknown platform %q", p)
		}
	}
	return nil
}

// Create makes a new draft post under a brand the user can access.
func (s *PostService) Create(user *db.User, input PostInput) (*db.Post, error) {
	brand, err := loadBrand(s.db, input.BrandID)
	if err != nil {
		return nil, err
	}
	if !user.HasBrandAccess(brand) {
		return nil, ErrPermissionDenied
	}

	if strings.TrimSpace(input.Title) == "" {
		return nil, errors.New("title is required")
	}
	if err := validatePlatforms(input.Platforms); err != nil {
		return nil, err
	}

	post := db.Post{
		BrandID:      input.BrandID,
		CollectionID: input.CollectionID,
		CreatedBy:    user.ID,
		Title:        strings.TrimSpace(input.Title),
		Caption:      input.Caption,
		Platforms:    input.Platforms,
		Status:       db.PostStatusDraft,
		ScheduledFor: input.ScheduledFor,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		for i, mediaID := range input.MediaIDs {
			if err := attachMedia(tx, &post, mediaID, i); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(user, post.ID)
}

// Get loads a post with its relations, enforcing brand access.
func (s *PostService) Get(user *db.User, id uint) (*db.Post, error) {
	var post db.Post
	err := s.db.
		Preload("Brand").
		Preload("Creator").
		Preload("Attachments", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("post_media.position asc")
		}).
		Preload("Attachments.Media").
		Preload("Comments", "parent_id IS NULL").
		Preload("Comments.User").
		Preload("Comments.Replies.User").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if !user.HasBrandAccess(&post.Brand) {
		return nil, ErrPermissionDenied
	}
	return &post, nil
}

// List returns posts across the user's accessible brands, newest first.
func (s *PostService) List(user *db.User, filter PostFilter) (*PostListResult, error) {
	brandIDs, err := accessibleBrandIDs(s.db, user)
	if err != nil {
		return nil, err
	}

	result := &PostListResult{Page: filter.Page, PerPage: filter.PerPage}
	if result.Page <= 0 {
		result.Page = 1
	}
	if result.PerPage <= 0 {
		result.PerPage = 20
	}

	base := s.db.Model(&db.Post{}).Where("brand_id IN ?", brandIDs)
	if filter.BrandID != 0 {
		base = base.Where("brand_id = ?", filter.BrandID)
	}
	if filter.Status != "" {
		base = base.Where("status = ?", filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		base = base.Where("title LIKE ? OR caption LIKE ?", like, like)
	}

	if err := base.Count(&result.Total).Error; err != nil {
		return nil, err
	}

	offset := (result.Page - 1) * result.PerPage
	var posts []db.Post
	if err := base.
		Preload("Brand").
		Preload("Creator").
		Preload("Attachments.Media").
		Order("created_at desc").
		Limit(result.PerPage).Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, err
	}

	if result.Total == 0 {
		result.TotalPages = 1
	} else {
		result.TotalPages = int((result.Total + int64(result.PerPage) - 1) / int64(result.PerPage))
	}

	result.Posts = posts
	return result, nil
}

// canManagePost reports whether the user may edit or delete the post.
// Managers cover every post in their agency's brands; creators only
// their own.
func canManagePost(user *db.User, post *db.Post) bool {
	if !user.HasBrandAccess(&post.Brand) {
		return false
	}
	return user.IsManager() || post.CreatedBy == user.ID
}

// Update edits a post. Approved and pending posts cannot be edited.
func (s *PostService) Update(user *db.User, id uint, input PostInput) (*db.Post, error) {
	post, err := s.Get(user, id)
	if err != nil {
		return nil, err
	}
	if !canManagePost(user, post) {
		return nil, ErrPermissionDenied
	}
	if !post.CanBeEdited() {
		return nil, ErrInvalidState
	}
	if err := validatePlatforms(input.Platforms); err != nil {
		return nil, err
	}

	updates := map[string]any{
		"caption":       input.Caption,
		"scheduled_for": input.ScheduledFor,
	}
	if title := strings.TrimSpace(input.Title); title != "" {
		updates["title"] = title
	}
	if err := s.db.Model(post).Updates(updates).Error; err != nil {
		return nil, err
	}
	if input.Platforms != nil {
		if err := s.db.Model(post).Select("Platforms").Updates(db.Post{Platforms: input.Platforms}).Error; err != nil {
			return nil, err
		}
	}

	return s.Get(user, id)
}

// Delete soft-deletes a post.
func (s *PostService) Delete(user *db.User, id uint) error {
	post, err := s.Get(user, id)
	if err != nil {
		return err
	}
	if !canManagePost(user, post) {
		return ErrPermissionDenied
	}
	return s.db.Delete(post).Error
}

// Duplicate clones a post as a fresh draft owned by the caller. Media
// attachments are carried over; review history is not.
func (s *PostService) Duplicate(user *db.User, id uint) (*db.Post, error) {
	post, err := s.Get(user, id)
	if err != nil {
		return nil, err
	}

	copyPost := db.Post{
		BrandID:      post.BrandID,
		CreatedBy:    user.ID,
		Title:        post.Title + " (Copy)",
		Caption:      post.Caption,
		Platforms:    post.Platforms,
		Status:       db.PostStatusDraft,
		ScheduledFor: post.ScheduledFor,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&copyPost).Error; err != nil {
			return err
		}
		for _, attachment := range post.Attachments {
			clone := db.PostMedia{
				PostID:            copyPost.ID,
				MediaID:           attachment.MediaID,
				Position:          attachment.Position,
				PlatformOverrides: attachment.PlatformOverrides,
			}
			if err := tx.Create(&clone).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(user, copyPost.ID)
}

func attachMedia(tx *gorm.DB, post *db.Post, mediaID uint, position int) error {
	var media db.Media
	if err := tx.First(&media, mediaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMediaNotFound
		}
		return err
	}
	if media.BrandID != post.BrandID {
		return ErrResourceMismatch
	}
	return tx.Create(&db.PostMedia{
		PostID:   post.ID,
		MediaID:  mediaID,
		Position: position,
	}).Error
}

// AttachMedia links a media item to the post at the end of its carousel.
// The media must belong to the post's brand.
func (s *PostService) AttachMedia(user *db.User, postID, mediaID uint) (*db.Post, error) {
	post, err := s.Get(user, postID)
	if err != nil {
		return nil, err
	}
	if !canManagePost(user, post) {
		return nil, ErrPermissionDenied
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&db.PostMedia{}).Where("post_id = ?", post.ID).Count(&count).Error; err != nil {
			return err
		}
		return attachMedia(tx, post, mediaID, int(count))
	})
	if err != nil {
		return nil, err
	}
	return s.Get(user, postID)
}

// DetachMedia removes a media item from the post.
func (s *PostService) DetachMedia(user *db.User, postID, mediaID uint) error {
	post, err := s.Get(user, postID)
	if err != nil {
		return err
	}
	if !canManagePost(user, post) {
		return ErrPermissionDenied
	}
	return s.db.Where("post_id = ? AND media_id = ?", postID, mediaID).Delete(&db.PostMedia{}).Error
}

// ReorderMedia rewrites attachment positions to match the given media id
// order. Every attached media id must appear exactly once.
func (s *PostService) ReorderMedia(user *db.User, postID uint, mediaIDs []uint) error {
	post, err := s.Get(user, postID)
	if err != nil {
		return err
	}
	if !canManagePost(user, post) {
		return ErrPermissionDenied
	}

	attached := make(map[uint]bool, len(post.Attachments))
	for _, attachment := range post.Attachments {
		attached[attachment.MediaID] = true
	}
	if len(mediaIDs) != len(attached) {
		return ErrResourceMismatch
	}
	for _, id := range mediaIDs {
		if !attached[id] {
			return ErrResourceMismatch
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for position, mediaID := range mediaIDs {
			if err := tx.Model(&db.PostMedia{}).
				Where("post_id = ? AND media_id = ?", postID, mediaID).
				Update("position", position).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
