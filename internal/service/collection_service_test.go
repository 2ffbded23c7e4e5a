package service

import (
	"errors"
	"testing"
	"time"

	"github.com/vernard/PostReviewer/internal/db"
	"gorm.io/gorm"
)

func collectionFixture(t *testing.T, gdb *gorm.DB, svc *CollectionService) (*db.User, *db.Brand, *db.Collection) {
	t.Helper()

	agency := createAgency(t, gdb, "Studio")
	manager := createUser(t, gdb, agency.ID, "Mara", db.RoleManager)
	brand := createBrand(t, gdb, agency.ID, "acme")

	collection, err := svc.Create(reloadUser(t, gdb, manager.ID), CollectionInput{
		BrandID: brand.ID,
		Name:    "March batch",
	})
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}
	return manager, brand, collection
}

func TestCollectionService_SubmitForApprovalMintsLink(t *testing.T) {
	gdb := setupTestDB(t, "collection-submit")
	svc := NewCollectionService(gdb, nil, "http://app.test")

	manager, brand, collection := collectionFixture(t, gdb, svc)
	user := reloadUser(t, gdb, manager.ID)

	draft := createPost(t, gdb, brand.ID, manager.ID, "Draft one", db.PostStatusDraft)
	revise := createPost(t, gdb, brand.ID, manager.ID, "Needs work", db.PostStatusChangesRequested)
	approved := createPost(t, gdb, brand.ID, manager.ID, "Done", db.PostStatusApproved)
	if _, err := svc.AddPosts(user, collection.ID, []uint{draft.ID, revise.ID, approved.ID}); err != nil {
		t.Fatalf("add posts: %v", err)
	}

	submitted, url, err := svc.SubmitForApproval(user, collection.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submitted != 2 {
		t.Fatalf("expected 2 submitted, got %d", submitted)
	}
	if url == "" {
		t.Fatal("expected a share link")
	}

	for _, id := range []uint{draft.ID, revise.ID} {
		var post db.Post
		if err := gdb.First(&post, id).Error; err != nil {
			t.Fatalf("reload post: %v", err)
		}
		if post.Status != db.PostStatusPendingApproval {
			t.Fatalf("post %d: expected pending_approval, got %s", id, post.Status)
		}
	}

	var untouched db.Post
	if err := gdb.First(&untouched, approved.ID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if untouched.Status != db.PostStatusApproved {
		t.Fatalf("approved post should be skipped, got %s", untouched.Status)
	}

	var reloaded db.Collection
	if err := gdb.First(&reloaded, collection.ID).Error; err != nil {
		t.Fatalf("reload collection: %v", err)
	}
	if !reloaded.HasValidApprovalToken() {
		t.Fatal("expected a live approval token")
	}
	ttl := time.Until(*reloaded.ApprovalTokenExpiresAt)
	if ttl < 29*24*time.Hour || ttl > 31*24*time.Hour {
		t.Fatalf("expected roughly 30-day expiry, got %v", ttl)
	}
}

func TestCollectionService_SubmitWithNothingEligible(t *testing.T) {
	gdb := setupTestDB(t, "collection-empty")
	svc := NewCollectionService(gdb, nil, "http://app.test")

	manager, brand, collection := collectionFixture(t, gdb, svc)
	user := reloadUser(t, gdb, manager.ID)

	approved := createPost(t, gdb, brand.ID, manager.ID, "Done", db.PostStatusApproved)
	if _, err := svc.AddPosts(user, collection.ID, []uint{approved.ID}); err != nil {
		t.Fatalf("add posts: %v", err)
	}

	if _, _, err := svc.SubmitForApproval(user, collection.ID); !errors.Is(err, ErrNoEligiblePosts) {
		t.Fatalf("expected ErrNoEligiblePosts, got %v", err)
	}
}

func TestCollectionService_ResolveTokenExpiry(t *testing.T) {
	gdb := setupTestDB(t, "collection-token")
	svc := NewCollectionService(gdb, nil, "http://app.test")

	manager, _, collection := collectionFixture(t, gdb, svc)
	user := reloadUser(t, gdb, manager.ID)

	if _, err := svc.ResolveToken("bogus"); !errors.Is(err, ErrNotFoundOrExpired) {
		t.Fatalf("unknown token: expected ErrNotFoundOrExpired, got %v", err)
	}

	_, _, err := svc.GenerateApprovalLink(user, collection.ID, 0)
	if err != nil {
		t.Fatalf("generate link: %v", err)
	}

	var minted db.Collection
	if err := gdb.First(&minted, collection.ID).Error; err != nil {
		t.Fatalf("reload collection: %v", err)
	}
	if _, err := svc.ResolveToken(minted.ApprovalToken); err != nil {
		t.Fatalf("resolve live token: %v", err)
	}

	if err := gdb.Model(&db.Collection{}).Where("id = ?", collection.ID).
		Update("approval_token_expires_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("expire token: %v", err)
	}
	if _, err := svc.ResolveToken(minted.ApprovalToken); !errors.Is(err, ErrNotFoundOrExpired) {
		t.Fatalf("expired token: expected ErrNotFoundOrExpired, got %v", err)
	}
}

func TestCollectionService_BulkReviewsAreAtomic(t *testing.T) {
	gdb := setupTestDB(t, "collection-bulk")
	svc := NewCollectionService(gdb, nil, "http://app.test")

	manager, brand, collection := collectionFixture(t, gdb, svc)
	user := reloadUser(t, gdb, manager.ID)

	inBatch := createPost(t, gdb, brand.ID, manager.ID, "In batch", db.PostStatusPendingApproval)
	outside := createPost(t, gdb, brand.ID, manager.ID, "Outside", db.PostStatusPendingApproval)
	if _, err := svc.AddPosts(user, collection.ID, []uint{inBatch.ID}); err != nil {
		t.Fatalf("add posts: %v", err)
	}

	var minted db.Collection
	if _, _, err := svc.GenerateApprovalLink(user, collection.ID, 0); err != nil {
		t.Fatalf("generate link: %v", err)
	}
	if err := gdb.First(&minted, collection.ID).Error; err != nil {
		t.Fatalf("reload collection: %v", err)
	}

	// One review targets a post outside the collection: the whole batch
	// must be refused with nothing written.
	_, err := svc.SubmitReviews(minted.ApprovalToken, []ReviewInput{
		{PostID: inBatch.ID, Status: db.PostStatusApproved},
		{PostID: outside.ID, Status: db.PostStatusApproved},
	})
	if !errors.Is(err, ErrResourceMismatch) {
		t.Fatalf("expected ErrResourceMismatch, got %v", err)
	}

	var untouched db.Post
	if err := gdb.First(&untouched, inBatch.ID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if untouched.Status != db.PostStatusPendingApproval {
		t.Fatalf("partial write leaked: %s", untouched.Status)
	}

	// A clean batch lands, stamps feedback and the review timestamp.
	updated, err := svc.SubmitReviews(minted.ApprovalToken, []ReviewInput{
		{PostID: inBatch.ID, Status: db.PostStatusChangesRequested, Feedback: "<b>tone it down</b>", CaptionSuggestion: "Try this caption"},
	})
	if err != nil {
		t.Fatalf("submit reviews: %v", err)
	}
	if updated.Metadata["last_reviewed_at"] == nil {
		t.Fatal("expected last_reviewed_at on the collection")
	}

	var reviewed db.Post
	if err := gdb.First(&reviewed, inBatch.ID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if reviewed.Status != db.PostStatusChangesRequested {
		t.Fatalf("expected changes_requested, got %s", reviewed.Status)
	}
	if feedback, _ := reviewed.Metadata["client_feedback"].(string); feedback != "tone it down" {
		t.Fatalf("feedback not sanitized: %q", feedback)
	}
	if suggestion, _ := reviewed.Metadata["caption_suggestion"].(string); suggestion != "Try this caption" {
		t.Fatalf("missing caption suggestion: %q", suggestion)
	}
}

func TestCollectionService_DeleteDetachesPosts(t *testing.T) {
	gdb := setupTestDB(t, "collection-delete")
	svc := NewCollectionService(gdb, nil, "http://app.test")

	manager, brand, collection := collectionFixture(t, gdb, svc)
	user := reloadUser(t, gdb, manager.ID)

	post := createPost(t, gdb, brand.ID, manager.ID, "Keeper", db.PostStatusDraft)
	if _, err := svc.AddPosts(user, collection.ID, []uint{post.ID}); err != nil {
		t.Fatalf("add posts: %v", err)
	}

	if err := svc.Delete(user, collection.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var survivor db.Post
	if err := gdb.First(&survivor, post.ID).Error; err != nil {
		t.Fatalf("post should survive: %v", err)
	}
	if survivor.CollectionID != nil {
		t.Fatalf("post should be detached, still in %d", *survivor.CollectionID)
	}
}
