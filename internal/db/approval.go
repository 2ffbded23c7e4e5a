package db

import (
	"time"

	"gorm.io/gorm"
)

// Approval request states and reviewer decisions.
const (
	ApprovalStatusPending  = "pending"
	ApprovalStatusApproved = "approved"
	ApprovalStatusRejected = "rejected"

	DecisionApproved         = "approved"
	DecisionChangesRequested = "changes_requested"
)

// InviteTTLDays is the default lifetime of an external review invite.
const InviteTTLDays = 7

// ApprovalRequest is one review cycle for a post. A post accumulates
// requests over its history; the most recent one is the active cycle.
// Once the status leaves pending the request is immutable.
type ApprovalRequest struct {
	gorm.Model
	PostID      uint   `gorm:"index;not null"`
	Post        Post   `json:"post,omitempty"`
	RequestedBy uint   `gorm:"not null"`
	Requester   User   `gorm:"foreignKey:RequestedBy" json:"requester,omitempty"`
	Status      string `gorm:"index;not null;default:pending"`
	DueDate     *time.Time

	Responses []ApprovalResponse `json:"responses,omitempty"`
	Invites   []ApprovalInvite   `json:"invites,omitempty"`
}

func (r *ApprovalRequest) IsPending() bool {
	return r.Status == ApprovalStatusPending
}

func (r *ApprovalRequest) IsApproved() bool {
	return r.Status == ApprovalStatusApproved
}

func (r *ApprovalRequest) IsRejected() bool {
	return r.Status == ApprovalStatusRejected
}

// ApprovalResponse is an authenticated reviewer's decision on a request.
// Several reviewers may respond but only the first decisive one flips
// the request.
type ApprovalResponse struct {
	gorm.Model
	ApprovalRequestID uint   `gorm:"index;not null"`
	UserID            uint   `gorm:"not null"`
	User              User   `json:"user,omitempty"`
	Decision          string `gorm:"not null"`
	Comment           string
}

// ApprovalInvite grants one external email address token based access to
// review the post behind a request. It stays usable only while the
// parent request is pending.
type ApprovalInvite struct {
	gorm.Model
	ApprovalRequestID uint            `gorm:"index;not null"`
	ApprovalRequest   ApprovalRequest `json:"approval_request,omitempty"`
	Email             string          `gorm:"index"`
	Token             string          `gorm:"uniqueIndex;size:64;not null"`
	ExpiresAt         time.Time
	RespondedAt       *time.Time
}

func (i *ApprovalInvite) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

func (i *ApprovalInvite) HasResponded() bool {
	return i.RespondedAt != nil
}

// IsValid reports whether the invite can still be used. The parent
// request must be loaded.
func (i *ApprovalInvite) IsValid() bool {
	return !i.IsExpired() && i.ApprovalRequest.IsPending()
}
