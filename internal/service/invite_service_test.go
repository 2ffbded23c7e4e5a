package service

import (
	"errors"
	"testing"
	"time"

	"github.com/vernard/PostReviewer/internal/db"
	"gorm.io/gorm"
)

func setupInvite(t *testing.T, gdb *gorm.DB, svc *InviteService) (*db.User, *db.Post, *db.ApprovalInvite) {
	t.Helper()

	agency := createAgency(t, gdb, "Studio")
	manager := createUser(t, gdb, agency.ID, "Mara", db.RoleManager)
	creator := createUser(t, gdb, agency.ID, "Cai", db.RoleCreator)
	brand := createBrand(t, gdb, agency.ID, "acme")
	assignBrand(t, gdb, creator, brand)
	post := createPost(t, gdb, brand.ID, creator.ID, "Teaser", db.PostStatusDraft)

	approvals := NewApprovalService(gdb, nil)
	request, err := approvals.Submit(reloadUser(t, gdb, creator.ID), post.ID, nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	invite, err := svc.Issue(reloadUser(t, gdb, manager.ID), request.ID, "client@example.com", 0)
	if err != nil {
		t.Fatalf("issue invite: %v", err)
	}
	return manager, post, invite
}

func TestInviteService_IssueAndResolveRoundtrip(t *testing.T) {
	gdb := setupTestDB(t, "invite-roundtrip")
	svc := NewInviteService(gdb, nil, "http://app.test")

	_, post, invite := setupInvite(t, gdb, svc)

	if len(invite.Token) != 64 {
		t.Fatalf("expected 64-char token, got %d chars", len(invite.Token))
	}
	ttl := time.Until(invite.ExpiresAt)
	if ttl < 6*24*time.Hour || ttl > 8*24*time.Hour {
		t.Fatalf("expected roughly 7-day expiry, got %v", ttl)
	}

	resolved, err := svc.Resolve(invite.Token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.ApprovalRequest.Post.ID != post.ID {
		t.Fatalf("resolved wrong post %d", resolved.ApprovalRequest.Post.ID)
	}
	if resolved.ApprovalRequest.Post.Brand.Name == "" {
		t.Fatal("expected brand preloaded")
	}
}

func TestInviteService_ResolveIsUniformlyInvalid(t *testing.T) {
	gdb := setupTestDB(t, "invite-invalid")
	svc := NewInviteService(gdb, nil, "http://app.test")

	manager, _, invite := setupInvite(t, gdb, svc)

	// Unknown token.
	if _, err := svc.Resolve("no-such-token"); !errors.Is(err, ErrNotFoundOrExpired) {
		t.Fatalf("unknown token: expected ErrNotFoundOrExpired, got %v", err)
	}

	// Expired token.
	if err := gdb.Model(&db.ApprovalInvite{}).Where("id = ?", invite.ID).
		Update("expires_at", time.Now().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("expire invite: %v", err)
	}
	if _, err := svc.Resolve(invite.Token); !errors.Is(err, ErrNotFoundOrExpired) {
		t.Fatalf("expired token: expected ErrNotFoundOrExpired, got %v", err)
	}
	if err := gdb.Model(&db.ApprovalInvite{}).Where("id = ?", invite.ID).
		Update("expires_at", time.Now().Add(24*time.Hour)).Error; err != nil {
		t.Fatalf("restore invite: %v", err)
	}

	// Parent request no longer pending.
	approvals := NewApprovalService(gdb, nil)
	if _, err := approvals.Approve(reloadUser(t, gdb, manager.ID), invite.ApprovalRequestID, ""); err != nil {
		t.Fatalf("approve internally: %v", err)
	}
	if _, err := svc.Resolve(invite.Token); !errors.Is(err, ErrNotFoundOrExpired) {
		t.Fatalf("settled request: expected ErrNotFoundOrExpired, got %v", err)
	}
}

func TestInviteService_RespondApproveStampsAttribution(t *testing.T) {
	gdb := setupTestDB(t, "invite-approve")
	notifier := &stubNotifier{}
	svc := NewInviteService(gdb, notifier, "http://app.test")

	_, post, invite := setupInvite(t, gdb, svc)

	updated, err := svc.Respond(invite.Token, db.DecisionApproved, "ship it")
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if updated.Status != db.PostStatusApproved {
		t.Fatalf("expected approved post, got %s", updated.Status)
	}

	var reloaded db.Post
	if err := gdb.First(&reloaded, post.ID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if reloaded.Metadata["approved_by_email"] != "client@example.com" {
		t.Fatalf("missing attribution in %v", reloaded.Metadata)
	}
	if reloaded.Metadata["approved_at"] == nil {
		t.Fatal("missing approved_at in metadata")
	}

	var spent db.ApprovalInvite
	if err := gdb.First(&spent, invite.ID).Error; err != nil {
		t.Fatalf("reload invite: %v", err)
	}
	if spent.RespondedAt == nil {
		t.Fatal("invite should be marked responded")
	}

	if len(notifier.kinds) == 0 || notifier.kinds[len(notifier.kinds)-1] != NotifyPostApproved {
		t.Fatalf("expected creator notification, got %v", notifier.kinds)
	}
}

func TestInviteService_RespondTwiceIsInvalid(t *testing.T) {
	gdb := setupTestDB(t, "invite-twice")
	svc := NewInviteService(gdb, nil, "http://app.test")

	_, post, invite := setupInvite(t, gdb, svc)

	if _, err := svc.Respond(invite.Token, db.DecisionApproved, ""); err != nil {
		t.Fatalf("first respond: %v", err)
	}
	if _, err := svc.Respond(invite.Token, db.DecisionChangesRequested, "changed my mind"); !errors.Is(err, ErrNotFoundOrExpired) {
		t.Fatalf("second respond: expected ErrNotFoundOrExpired, got %v", err)
	}

	var reloaded db.Post
	if err := gdb.First(&reloaded, post.ID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if reloaded.Status != db.PostStatusApproved {
		t.Fatalf("second respond mutated the post: %s", reloaded.Status)
	}
}

func TestInviteService_RespondChangesSanitizesFeedback(t *testing.T) {
	gdb := setupTestDB(t, "invite-feedback")
	svc := NewInviteService(gdb, nil, "http://app.test")

	_, post, invite := setupInvite(t, gdb, svc)

	if _, err := svc.Respond(invite.Token, db.DecisionChangesRequested, "  "); !errors.Is(err, ErrCommentRequired) {
		t.Fatalf("expected ErrCommentRequired, got %v", err)
	}

	updated, err := svc.Respond(invite.Token, db.DecisionChangesRequested, `<script>alert(1)</script>Use the new logo`)
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if updated.Status != db.PostStatusChangesRequested {
		t.Fatalf("expected changes_requested, got %s", updated.Status)
	}

	var reloaded db.Post
	if err := gdb.First(&reloaded, post.ID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	feedback, _ := reloaded.Metadata["client_feedback"].(string)
	if feedback != "Use the new logo" {
		t.Fatalf("feedback not sanitized: %q", feedback)
	}
}
