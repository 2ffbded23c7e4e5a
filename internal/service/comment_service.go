package service

import (
	"errors"
	"strings"
	"time"

	"github.com/vernard/PostReviewer/internal/db"
	"gorm.io/gorm"
)

var ErrCommentNotFound = errors.New("comment not found")

// CommentService handles the internal discussion thread on a post.
type CommentService struct {
	db *gorm.DB
}

// NewCommentService creates a CommentService instance.
func NewCommentService(gdb *gorm.DB) *CommentService {
	return &CommentService{db: gdb}
}

// Create adds a comment, or a reply when parentID is set. Replies must
// target a top-level comment on the same post.
func (s *CommentService) Create(user *db.User, postID uint, body string, parentID *uint, attachment string) (*db.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrCommentRequired
	}

	var post db.Post
	if err := s.db.Preload("Brand").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if !user.HasBrandAccess(&post.Brand) {
		return nil, ErrPermissionDenied
	}

	if parentID != nil {
		var parent db.Comment
		if err := s.db.First(&parent, *parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCommentNotFound
			}
			return nil, err
		}
		if parent.PostID != postID || parent.ParentID != nil {
			return nil, ErrResourceMismatch
		}
	}

	comment := db.Comment{
		PostID:     postID,
		UserID:     user.ID,
		ParentID:   parentID,
		Body:       body,
		Attachment: attachment,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}

	return s.get(comment.ID)
}

func (s *CommentService) get(id uint) (*db.Comment, error) {
	var comment db.Comment
	err := s.db.Preload("User").Preload("Replies.User").First(&comment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}

// List returns a post's top-level comments with replies, oldest first.
func (s *CommentService) List(user *db.User, postID uint) ([]db.Comment, error) {
	var post db.Post
	if err := s.db.Preload("Brand").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if !user.HasBrandAccess(&post.Brand) {
		return nil, ErrPermissionDenied
	}

	var comments []db.Comment
	err := s.db.
		Where("post_id = ? AND parent_id IS NULL", postID).
		Preload("User").
		Preload("Replies", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("comments.created_at asc")
		}).
		Preload("Replies.User").
		Order("created_at asc").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// loadForUser fetches a comment and checks the caller can see its post.
func (s *CommentService) loadForUser(user *db.User, id uint) (*db.Comment, error) {
	comment, err := s.get(id)
	if err != nil {
		return nil, err
	}

	var post db.Post
	if err := s.db.Preload("Brand").First(&post, comment.PostID).Error; err != nil {
		return nil, err
	}
	if !user.HasBrandAccess(&post.Brand) {
		return nil, ErrPermissionDenied
	}
	return comment, nil
}

// Update edits a comment's body. Authors only.
func (s *CommentService) Update(user *db.User, id uint, body string) (*db.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrCommentRequired
	}

	comment, err := s.loadForUser(user, id)
	if err != nil {
		return nil, err
	}
	if comment.UserID != user.ID {
		return nil, ErrPermissionDenied
	}

	if err := s.db.Model(comment).Update("body", body).Error; err != nil {
		return nil, err
	}
	return s.get(id)
}

// Delete removes a comment and its replies. Authors and managers.
func (s *CommentService) Delete(user *db.User, id uint) error {
	comment, err := s.loadForUser(user, id)
	if err != nil {
		return err
	}
	if comment.UserID != user.ID && !user.IsManager() {
		return ErrPermissionDenied
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", comment.ID).Delete(&db.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(comment).Error
	})
}

// Resolve marks a comment thread as addressed.
func (s *CommentService) Resolve(user *db.User, id uint) (*db.Comment, error) {
	comment, err := s.loadForUser(user, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.db.Model(comment).Update("resolved_at", now).Error; err != nil {
		return nil, err
	}
	return s.get(id)
}
