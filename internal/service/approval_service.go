package service

import (
	"errors"
	"strings"
	"time"

	"github.com/vernard/PostReviewer/internal/db"
	"gorm.io/gorm"
)

var ErrRequestNotFound = errors.New("approval request not found")

// ApprovalService drives the single-post review cycle: submitting a post
// opens an ApprovalRequest, an internal reviewer's decision closes it.
// External (invite based) decisions run through InviteService but share
// the same decisive flip.
type ApprovalService struct {
	db       *gorm.DB
	notifier Notifier
}

// NewApprovalService creates an ApprovalService instance.
func NewApprovalService(gdb *gorm.DB, notifier Notifier) *ApprovalService {
	return &ApprovalService{db: gdb, notifier: notifier}
}

// ApprovalFilter describes filters for listing approval requests.
type ApprovalFilter struct {
	Status  string
	Page    int
	PerPage int
}

// ApprovalListResult aggregates paginated approval requests.
type ApprovalListResult struct {
	Requests   []db.ApprovalRequest
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// transitionPost is the single primitive both approval surfaces go
// through to move a post into a reviewed status. Attribution entries are
// merged into the post's metadata map; external reviewers have no user
// account, so attribution is the only record of who acted.
func transitionPost(tx *gorm.DB, post *db.Post, status string, attribution map[string]any) error {
	if len(attribution) > 0 {
		if post.Metadata == nil {
			post.Metadata = map[string]any{}
		}
		for k, v := range attribution {
			post.Metadata[k] = v
		}
	}
	post.Status = status
	return tx.Model(post).
		Select("Status", "Metadata").
		Updates(db.Post{Status: status, Metadata: post.Metadata}).Error
}

// submitPost opens a new review cycle for the post inside tx. The caller
// has already checked brand access.
func submitPost(tx *gorm.DB, post *db.Post, requestedBy uint, dueDate *time.Time) (*db.ApprovalRequest, error) {
	if !post.CanBeSubmittedForApproval() {
		return nil, ErrInvalidState
	}

	request := db.ApprovalRequest{
		PostID:      post.ID,
		RequestedBy: requestedBy,
		Status:      db.ApprovalStatusPending,
		DueDate:     dueDate,
	}
	if err := tx.Create(&request).Error; err != nil {
		return nil, err
	}

	if err := transitionPost(tx, post, db.PostStatusPendingApproval, nil); err != nil {
		return nil, err
	}

	return &request, nil
}

// Submit opens a review cycle for one post and notifies the agency's
// reviewers.
func (s *ApprovalService) Submit(user *db.User, postID uint, dueDate *time.Time) (*db.ApprovalRequest, error) {
	var post db.Post
	if err := s.db.Preload("Brand").Preload("Creator").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if !user.HasBrandAccess(&post.Brand) {
		return nil, ErrPermissionDenied
	}

	var request *db.ApprovalRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		request, txErr = submitPost(tx, &post, user.ID, dueDate)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	// Notify reviewers in the same agency, except the submitter.
	var reviewers []db.User
	if err := s.db.Where("agency_id = ? AND role IN ? AND id <> ?",
		user.AgencyID,
		[]string{db.RoleAdmin, db.RoleManager, db.RoleReviewer},
		user.ID,
	).Find(&reviewers).Error; err == nil {
		for _, reviewer := range reviewers {
			notify(s.notifier, NotifyPostSubmitted, reviewer.Email, map[string]string{
				"post_title":   post.Title,
				"brand_name":   post.Brand.Name,
				"submitted_by": user.Name,
			})
		}
	}

	return request, nil
}

// Approve records an internal reviewer's approval and moves the post to
// approved.
func (s *ApprovalService) Approve(user *db.User, requestID uint, comment string) (*db.ApprovalRequest, error) {
	return s.respond(user, requestID, db.DecisionApproved, comment)
}

// RequestChanges records an internal reviewer's rejection and moves the
// post back to changes_requested. The comment is mandatory.
func (s *ApprovalService) RequestChanges(user *db.User, requestID uint, comment string) (*db.ApprovalRequest, error) {
	if strings.TrimSpace(comment) == "" {
		return nil, ErrCommentRequired
	}
	return s.respond(user, requestID, db.DecisionChangesRequested, comment)
}

func (s *ApprovalService) respond(user *db.User, requestID uint, decision, comment string) (*db.ApprovalRequest, error) {
	if !user.CanReview() {
		return nil, ErrPermissionDenied
	}

	var request db.ApprovalRequest
	if err := s.db.Preload("Post.Brand").Preload("Post.Creator").First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	if !user.HasBrandAccess(&request.Post.Brand) {
		return nil, ErrPermissionDenied
	}

	if !request.IsPending() {
		return nil, ErrInvalidState
	}

	requestStatus := db.ApprovalStatusApproved
	postStatus := db.PostStatusApproved
	if decision == db.DecisionChangesRequested {
		requestStatus = db.ApprovalStatusRejected
		postStatus = db.PostStatusChangesRequested
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Conditional flip: the WHERE on status means a concurrent
		// decisive response loses here instead of silently overwriting.
		res := tx.Model(&db.ApprovalRequest{}).
			Where("id = ? AND status = ?", request.ID, db.ApprovalStatusPending).
			Update("status", requestStatus)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidState
		}

		response := db.ApprovalResponse{
			ApprovalRequestID: request.ID,
			UserID:            user.ID,
			Decision:          decision,
			Comment:           strings.TrimSpace(comment),
		}
		if err := tx.Create(&response).Error; err != nil {
			return err
		}

		return transitionPost(tx, &request.Post, postStatus, nil)
	})
	if err != nil {
		return nil, err
	}

	kind := NotifyPostApproved
	if decision == db.DecisionChangesRequested {
		kind = NotifyPostChangesRequested
	}
	notify(s.notifier, kind, request.Post.Creator.Email, map[string]string{
		"post_title":    request.Post.Title,
		"reviewer_name": user.Name,
		"comment":       strings.TrimSpace(comment),
	})

	request.Status = requestStatus
	return &request, nil
}

// List returns the approval requests visible to the user, newest first,
// filtered by status (default pending).
func (s *ApprovalService) List(user *db.User, filter ApprovalFilter) (*ApprovalListResult, error) {
	if !user.CanReview() {
		return nil, ErrPermissionDenied
	}

	brandIDs, err := accessibleBrandIDs(s.db, user)
	if err != nil {
		return nil, err
	}

	result := &ApprovalListResult{Page: filter.Page, PerPage: filter.PerPage}
	if result.Page <= 0 {
		result.Page = 1
	}
	if result.PerPage <= 0 {
		result.PerPage = 20
	}

	status := filter.Status
	if status == "" {
		status = db.ApprovalStatusPending
	}

	base := s.db.Model(&db.ApprovalRequest{}).
		Joins("JOIN posts ON posts.id = approval_requests.post_id").
		Where("posts.brand_id IN ?", brandIDs).
		Where("posts.deleted_at IS NULL").
		Where("approval_requests.status = ?", status)

	if err := base.Count(&result.Total).Error; err != nil {
		return nil, err
	}

	offset := (result.Page - 1) * result.PerPage
	var requests []db.ApprovalRequest
	if err := base.
		Preload("Post.Brand").
		Preload("Post.Creator").
		Preload("Post.Attachments.Media").
		Preload("Requester").
		Preload("Responses.User").
		Order("approval_requests.created_at desc").
		Limit(result.PerPage).Offset(offset).
		Find(&requests).Error; err != nil {
		return nil, err
	}

	if result.Total == 0 {
		result.TotalPages = 1
	} else {
		result.TotalPages = int((result.Total + int64(result.PerPage) - 1) / int64(result.PerPage))
	}

	result.Requests = requests
	return result, nil
}
