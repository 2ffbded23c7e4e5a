package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vernard/PostReviewer/internal/db"
	"gorm.io/gorm"
)

const CollectionTokenTTLDays = 30

var (
	ErrCollectionNotFound = errors.New("collection not found")
	ErrNoEligiblePosts    = errors.New("collection has no posts eligible for approval")
)

// CollectionService groups posts into client-facing batches and runs the
// shareable bulk-approval surface on top of them.
type CollectionService struct {
	db         *gorm.DB
	notifier   Notifier
	appBaseURL string
}

// NewCollectionService creates a CollectionService instance.
func NewCollectionService(gdb *gorm.DB, notifier Notifier, appBaseURL string) *CollectionService {
	return &CollectionService{db: gdb, notifier: notifier, appBaseURL: appBaseURL}
}

// CollectionInput carries the writable fields of a collection.
type CollectionInput struct {
	BrandID     uint
	Name        string
	Description string
	PostIDs     []uint
}

// ReviewInput is one external decision inside a bulk review.
type ReviewInput struct {
	PostID            uint
	Status            string
	Feedback          string
	CaptionSuggestion string
}

// ApprovalURL builds the public link for a collection approval token.
func (s *CollectionService) ApprovalURL(token string) string {
	return fmt.Sprintf("%s/approve/%s", s.appBaseURL, token)
}

// Create makes a collection, optionally adopting existing posts into it.
func (s *CollectionService) Create(user *db.User, input CollectionInput) (*db.Collection, error) {
	brand, err := loadBrand(s.db, input.BrandID)
	if err != nil {
		return nil, err
	}
	if !user.HasBrandAccess(brand) {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.New("name is required")
	}

	collection := db.Collection{
		BrandID:     input.BrandID,
		CreatedBy:   user.ID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&collection).Error; err != nil {
			return err
		}
		if len(input.PostIDs) > 0 {
			return adoptPosts(tx, &collection, input.PostIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(user, collection.ID)
}

// adoptPosts moves the given posts into the collection. Each post must
// belong to the collection's brand.
func adoptPosts(tx *gorm.DB, collection *db.Collection, postIDs []uint) error {
	var posts []db.Post
	if err := tx.Where("id IN ?", postIDs).Find(&posts).Error; err != nil {
		return err
	}
	if len(posts) != len(postIDs) {
		return ErrPostNotFound
	}
	for _, post := range posts {
		if post.BrandID != collection.BrandID {
			return ErrResourceMismatch
		}
	}
	return tx.Model(&db.Post{}).
		Where("id IN ?", postIDs).
		Update("collection_id", collection.ID).Error
}

// Get loads a collection with its posts, enforcing brand access.
func (s *CollectionService) Get(user *db.User, id uint) (*db.Collection, error) {
	collection, err := s.load(id)
	if err != nil {
		return nil, err
	}

	var brand db.Brand
	if err := s.db.First(&brand, collection.BrandID).Error; err != nil {
		return nil, err
	}
	if !user.HasBrandAccess(&brand) {
		return nil, ErrPermissionDenied
	}
	return collection, nil
}

func (s *CollectionService) load(id uint) (*db.Collection, error) {
	var collection db.Collection
	err := s.db.
		Preload("Creator").
		Preload("Posts", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("posts.created_at asc")
		}).
		Preload("Posts.Attachments", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("post_media.position asc")
		}).
		Preload("Posts.Attachments.Media").
		First(&collection, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCollectionNotFound
		}
		return nil, err
	}
	return &collection, nil
}

// List returns collections across the user's accessible brands.
func (s *CollectionService) List(user *db.User, brandID uint) ([]db.Collection, error) {
	brandIDs, err := accessibleBrandIDs(s.db, user)
	if err != nil {
		return nil, err
	}

	query := s.db.Where("brand_id IN ?", brandIDs)
	if brandID != 0 {
		query = query.Where("brand_id = ?", brandID)
	}

	var collections []db.Collection
	if err := query.
		Preload("Creator").
		Preload("Posts").
		Order("created_at desc").
		Find(&collections).Error; err != nil {
		return nil, err
	}
	return collections, nil
}

// Update edits a collection's name and description.
func (s *CollectionService) Update(user *db.User, id uint, name, description string) (*db.Collection, error) {
	collection, err := s.Get(user, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"description": description}
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		updates["name"] = trimmed
	}
	if err := s.db.Model(collection).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(user, id)
}

// Delete removes a collection. Its posts survive and are detached.
func (s *CollectionService) Delete(user *db.User, id uint) error {
	collection, err := s.Get(user, id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&db.Post{}).
			Where("collection_id = ?", collection.ID).
			Update("collection_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(collection).Error
	})
}

// AddPosts moves existing posts into the collection.
func (s *CollectionService) AddPosts(user *db.User, id uint, postIDs []uint) (*db.Collection, error) {
	collection, err := s.Get(user, id)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return adoptPosts(tx, collection, postIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(user, id)
}

// RemovePosts detaches posts from the collection without deleting them.
func (s *CollectionService) RemovePosts(user *db.User, id uint, postIDs []uint) (*db.Collection, error) {
	collection, err := s.Get(user, id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(&db.Post{}).
		Where("collection_id = ? AND id IN ?", collection.ID, postIDs).
		Update("collection_id", nil).Error; err != nil {
		return nil, err
	}
	return s.Get(user, id)
}

// GenerateApprovalLink mints (or re-mints) the collection's shareable
// approval token. Re-minting invalidates the previous link.
func (s *CollectionService) GenerateApprovalLink(user *db.User, id uint, ttlDays int) (string, time.Time, error) {
	collection, err := s.Get(user, id)
	if err != nil {
		return "", time.Time{}, err
	}

	if ttlDays <= 0 {
		ttlDays = CollectionTokenTTLDays
	}

	token := generateToken()
	expiresAt := time.Now().Add(time.Duration(ttlDays) * 24 * time.Hour)
	err = s.db.Model(collection).Updates(map[string]any{
		"approval_token":            token,
		"approval_token_expires_at": expiresAt,
	}).Error
	if err != nil {
		return "", time.Time{}, err
	}

	return s.ApprovalURL(token), expiresAt, nil
}

// SubmitForApproval opens a review cycle for every draft or
// changes_requested post in the collection and returns the share link,
// minting a token if the collection has no live one. Returns
// ErrNoEligiblePosts when nothing qualifies.
func (s *CollectionService) SubmitForApproval(user *db.User, id uint) (int, string, error) {
	collection, err := s.Get(user, id)
	if err != nil {
		return 0, "", err
	}

	var eligible []db.Post
	for _, post := range collection.Posts {
		if post.CanBeSubmittedForApproval() {
			eligible = append(eligible, post)
		}
	}
	if len(eligible) == 0 {
		return 0, "", ErrNoEligiblePosts
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := range eligible {
			if _, err := submitPost(tx, &eligible[i], user.ID, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, "", err
	}

	url := s.ApprovalURL(collection.ApprovalToken)
	if !collection.HasValidApprovalToken() {
		url, _, err = s.GenerateApprovalLink(user, id, CollectionTokenTTLDays)
		if err != nil {
			return 0, "", err
		}
	}

	return len(eligible), url, nil
}

// ResolveToken loads the collection behind a public approval token. Any
// invalid token yields ErrNotFoundOrExpired.
func (s *CollectionService) ResolveToken(token string) (*db.Collection, error) {
	if token == "" {
		return nil, ErrNotFoundOrExpired
	}

	var stub db.Collection
	err := s.db.Select("id").Where("approval_token = ?", token).First(&stub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFoundOrExpired
		}
		return nil, err
	}

	collection, err := s.load(stub.ID)
	if err != nil {
		return nil, err
	}
	if !collection.HasValidApprovalToken() {
		return nil, ErrNotFoundOrExpired
	}
	return collection, nil
}

// SubmitReviews applies a batch of external decisions to the
// collection's posts in one transaction. If any review names a post
// outside the collection, nothing is written and ErrResourceMismatch is
// returned.
func (s *CollectionService) SubmitReviews(token string, reviews []ReviewInput) (*db.Collection, error) {
	collection, err := s.ResolveToken(token)
	if err != nil {
		return nil, err
	}
	if len(reviews) == 0 {
		return collection, nil
	}

	members := make(map[uint]*db.Post, len(collection.Posts))
	for i := range collection.Posts {
		members[collection.Posts[i].ID] = &collection.Posts[i]
	}

	for _, review := range reviews {
		if members[review.PostID] == nil {
			return nil, ErrResourceMismatch
		}
		if review.Status != db.PostStatusApproved && review.Status != db.PostStatusChangesRequested {
			return nil, ErrInvalidState
		}
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, review := range reviews {
			post := members[review.PostID]

			attribution := map[string]any{}
			if feedback := sanitizeFeedback(review.Feedback); feedback != "" {
				attribution["client_feedback"] = feedback
				attribution["feedback_at"] = now.Format(time.RFC3339)
			}
			if suggestion := sanitizeFeedback(review.CaptionSuggestion); suggestion != "" {
				attribution["caption_suggestion"] = suggestion
			}
			if review.Status == db.PostStatusApproved {
				attribution["approved_at"] = now.Format(time.RFC3339)
			}

			if err := transitionPost(tx, post, review.Status, attribution); err != nil {
				return err
			}
		}

		if collection.Metadata == nil {
			collection.Metadata = map[string]any{}
		}
		collection.Metadata["last_reviewed_at"] = now.Format(time.RFC3339)
		return tx.Model(collection).
			Select("Metadata").
			Updates(db.Collection{Metadata: collection.Metadata}).Error
	})
	if err != nil {
		return nil, err
	}

	return s.load(collection.ID)
}
