package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/vernard/PostReviewer/internal/db"
	"gorm.io/gorm"
)

// InviteService issues single-post review links for external clients and
// processes the decisions that come back through them. Every failure on
// the token side collapses into ErrNotFoundOrExpired so a caller probing
// tokens cannot tell missing from expired from spent.
type InviteService struct {
	db         *gorm.DB
	notifier   Notifier
	appBaseURL string
}

// NewInviteService creates an InviteService instance.
func NewInviteService(gdb *gorm.DB, notifier Notifier, appBaseURL string) *InviteService {
	return &InviteService{db: gdb, notifier: notifier, appBaseURL: appBaseURL}
}

// ReviewURL builds the public link for an invite token.
func (s *InviteService) ReviewURL(token string) string {
	return fmt.Sprintf("%s/review/%s", s.appBaseURL, token)
}

// Issue creates a review invite on a pending approval request. It does
// not send mail; InviteReviewers layers the notification on top.
func (s *InviteService) Issue(user *db.User, requestID uint, email string, ttlDays int) (*db.ApprovalInvite, error) {
	var request db.ApprovalRequest
	if err := s.db.Preload("Post.Brand").First(&request, requestID).Error; err != nil {
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

	if ttlDays <= 0 {
		ttlDays = db.InviteTTLDays
	}

	invite := db.ApprovalInvite{
		ApprovalRequestID: request.ID,
		Email:             email,
		Token:             generateToken(),
		ExpiresAt:         time.Now().Add(time.Duration(ttlDays) * 24 * time.Hour),
	}
	if err := s.db.Create(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

// InviteReviewers issues an invite per email address against the post's
// pending request and mails each recipient their review link.
func (s *InviteService) InviteReviewers(user *db.User, postID uint, emails []string, ttlDays int) ([]db.ApprovalInvite, error) {
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

	var request db.ApprovalRequest
	err := s.db.Where("post_id = ? AND status = ?", post.ID, db.ApprovalStatusPending).
		Order("created_at desc").
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidState
		}
		return nil, err
	}

	invites := make([]db.ApprovalInvite, 0, len(emails))
	for _, email := range emails {
		invite, err := s.Issue(user, request.ID, email, ttlDays)
		if err != nil {
			return nil, err
		}
		invites = append(invites, *invite)

		notify(s.notifier, NotifyReviewInvite, email, map[string]string{
			"post_title": post.Title,
			"brand_name": post.Brand.Name,
			"sender":     user.Name,
			"review_url": s.ReviewURL(invite.Token),
			"expires_at": invite.ExpiresAt.Format("January 2, 2006"),
		})
	}
	return invites, nil
}

// Resolve loads the invite behind a token, with the post and its media
// attached. Any invalid token, whatever the reason, yields
// ErrNotFoundOrExpired.
func (s *InviteService) Resolve(token string) (*db.ApprovalInvite, error) {
	if token == "" {
		return nil, ErrNotFoundOrExpired
	}

	var invite db.ApprovalInvite
	err := s.db.
		Preload("ApprovalRequest.Post.Brand").
		Preload("ApprovalRequest.Post.Creator").
		Preload("ApprovalRequest.Post.Attachments", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("post_media.position asc")
		}).
		Preload("ApprovalRequest.Post.Attachments.Media").
		Preload("ApprovalRequest.Requester").
		Where("token = ?", token).
		First(&invite).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFoundOrExpired
		}
		return nil, err
	}

	if !invite.IsValid() {
		return nil, ErrNotFoundOrExpired
	}
	return &invite, nil
}

// Respond records an external reviewer's decision. The decision flips
// the request exactly once; attribution lands in the post's metadata
// since the reviewer has no account.
func (s *InviteService) Respond(token, decision, comment string) (*db.Post, error) {
	invite, err := s.Resolve(token)
	if err != nil {
		return nil, err
	}

	if decision != db.DecisionApproved && decision != db.DecisionChangesRequested {
		return nil, ErrInvalidState
	}

	comment = sanitizeFeedback(comment)
	if decision == db.DecisionChangesRequested && comment == "" {
		return nil, ErrCommentRequired
	}

	request := &invite.ApprovalRequest
	post := &request.Post

	requestStatus := db.ApprovalStatusApproved
	postStatus := db.PostStatusApproved
	now := time.Now()
	attribution := map[string]any{
		"approved_by_email": invite.Email,
		"approved_at":       now.Format(time.RFC3339),
	}
	if comment != "" {
		attribution["approval_comment"] = comment
	}
	if decision == db.DecisionChangesRequested {
		requestStatus = db.ApprovalStatusRejected
		postStatus = db.PostStatusChangesRequested
		attribution = map[string]any{
			"changes_requested_by_email": invite.Email,
			"changes_requested_at":       now.Format(time.RFC3339),
			"client_feedback":            comment,
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&db.ApprovalRequest{}).
			Where("id = ? AND status = ?", request.ID, db.ApprovalStatusPending).
			Update("status", requestStatus)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFoundOrExpired
		}

		if err := tx.Model(&db.ApprovalInvite{}).
			Where("id = ?", invite.ID).
			Update("responded_at", now).Error; err != nil {
			return err
		}

		return transitionPost(tx, post, postStatus, attribution)
	})
	if err != nil {
		return nil, err
	}

	kind := NotifyPostApproved
	if decision == db.DecisionChangesRequested {
		kind = NotifyPostChangesRequested
	}
	notify(s.notifier, kind, request.Post.Creator.Email, map[string]string{
		"post_title":    post.Title,
		"reviewer_name": invite.Email,
		"comment":       comment,
	})

	return post, nil
}
