package service

import (
	"errors"
	"testing"

	"github.com/vernard/PostReviewer/internal/db"
)

func TestPostService_CreateAttachesMediaInOrder(t *testing.T) {
	gdb := setupTestDB(t, "post-create")
	svc := NewPostService(gdb)

	agency := createAgency(t, gdb, "Studio")
	manager := createUser(t, gdb, agency.ID, "Mara", db.RoleManager)
	brand := createBrand(t, gdb, agency.ID, "acme")
	first := createMedia(t, gdb, brand.ID, manager.ID, 1024)
	second := createMedia(t, gdb, brand.ID, manager.ID, 2048)

	post, err := svc.Create(reloadUser(t, gdb, manager.ID), PostInput{
		BrandID:   brand.ID,
		Title:     "Spring teaser",
		Caption:   "Coming soon",
		Platforms: []string{"instagram_feed", "instagram_story"},
		MediaIDs:  []uint{second.ID, first.ID},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if post.Status != db.PostStatusDraft {
		t.Fatalf("expected draft, got %s", post.Status)
	}
	if len(post.Attachments) != 2 {
		t.Fatalf("expected 2 attachments, got %d", len(post.Attachments))
	}
	if post.Attachments[0].MediaID != second.ID || post.Attachments[1].MediaID != first.ID {
		t.Fatalf("attachment order lost: %d, %d", post.Attachments[0].MediaID, post.Attachments[1].MediaID)
	}
}

func TestPostService_CreateRejectsUnknownPlatform(t *testing.T) {
	gdb := setupTestDB(t, "post-platform")
	svc := NewPostService(gdb)

	agency := createAgency(t, gdb, "Studio")
	manager := createUser(t, gdb, agency.ID, "Mara", db.RoleManager)
	brand := createBrand(t, gdb, agency.ID, "acme")

	_, err := svc.Create(reloadUser(t, gdb, manager.ID), PostInput{
		BrandID:   brand.ID,
		Title:     "Bad platform",
		Platforms: []string{"myspace_feed"},
	})
	if err == nil {
		t.Fatal("expected an error for an unknown platform")
	}
}

func TestPostService_UpdateBlockedWhilePending(t *testing.T) {
	gdb := setupTestDB(t, "post-update")
	svc := NewPostService(gdb)

	agency := createAgency(t, gdb, "Studio")
	manager := createUser(t, gdb, agency.ID, "Mara", db.RoleManager)
	brand := createBrand(t, gdb, agency.ID, "acme")
	post := createPost(t, gdb, brand.ID, manager.ID, "Locked", db.PostStatusPendingApproval)

	_, err := svc.Update(reloadUser(t, gdb, manager.ID), post.ID, PostInput{Caption: "new caption"})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestPostService_DuplicateResetsReviewState(t *testing.T) {
	gdb := setupTestDB(t, "post-duplicate")
	svc := NewPostService(gdb)

	agency := createAgency(t, gdb, "Studio")
	manager := createUser(t, gdb, agency.ID, "Mara", db.RoleManager)
	creator := createUser(t, gdb, agency.ID, "Cai", db.RoleCreator)
	brand := createBrand(t, gdb, agency.ID, "acme")
	assignBrand(t, gdb, creator, brand)

	original := createPost(t, gdb, brand.ID, manager.ID, "Original", db.PostStatusApproved)
	media := createMedia(t, gdb, brand.ID, manager.ID, 1024)
	if err := gdb.Create(&db.PostMedia{PostID: original.ID, MediaID: media.ID}).Error; err != nil {
		t.Fatalf("attach media: %v", err)
	}

	clone, err := svc.Duplicate(reloadUser(t, gdb, creator.ID), original.ID)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}

	if clone.Title != "Original (Copy)" {
		t.Fatalf("unexpected title %q", clone.Title)
	}
	if clone.Status != db.PostStatusDraft {
		t.Fatalf("clone should be a draft, got %s", clone.Status)
	}
	if clone.CreatedBy != creator.ID {
		t.Fatalf("clone should belong to the caller, got %d", clone.CreatedBy)
	}
	if len(clone.Attachments) != 1 || clone.Attachments[0].MediaID != media.ID {
		t.Fatalf("media not carried over: %+v", clone.Attachments)
	}
}

func TestPostService_AttachRejectsForeignBrandMedia(t *testing.T) {
	gdb := setupTestDB(t, "post-attach")
	svc := NewPostService(gdb)

	agency := createAgency(t, gdb, "Studio")
	manager := createUser(t, gdb, agency.ID, "Mara", db.RoleManager)
	brand := createBrand(t, gdb, agency.ID, "acme")
	other := createBrand(t, gdb, agency.ID, "globex")
	post := createPost(t, gdb, brand.ID, manager.ID, "Teaser", db.PostStatusDraft)
	foreign := createMedia(t, gdb, other.ID, manager.ID, 1024)

	_, err := svc.AttachMedia(reloadUser(t, gdb, manager.ID), post.ID, foreign.ID)
	if !errors.Is(err, ErrResourceMismatch) {
		t.Fatalf("expected ErrResourceMismatch, got %v", err)
	}
}

func TestPostService_ReorderValidatesMembership(t *testing.T) {
	gdb := setupTestDB(t, "post-reorder")
	svc := NewPostService(gdb)

	agency := createAgency(t, gdb, "Studio")
	manager := createUser(t, gdb, agency.ID, "Mara", db.RoleManager)
	brand := createBrand(t, gdb, agency.ID, "acme")
	post := createPost(t, gdb, brand.ID, manager.ID, "Carousel", db.PostStatusDraft)
	first := createMedia(t, gdb, brand.ID, manager.ID, 1024)
	second := createMedia(t, gdb, brand.ID, manager.ID, 1024)
	for i, media := range []*db.Media{first, second} {
		if err := gdb.Create(&db.PostMedia{PostID: post.ID, MediaID: media.ID, Position: i}).Error; err != nil {
			t.Fatalf("attach media: %v", err)
		}
	}
	user := reloadUser(t, gdb, manager.ID)

	if err := svc.ReorderMedia(user, post.ID, []uint{second.ID}); !errors.Is(err, ErrResourceMismatch) {
		t.Fatalf("short list: expected ErrResourceMismatch, got %v", err)
	}
	if err := svc.ReorderMedia(user, post.ID, []uint{second.ID, 9999}); !errors.Is(err, ErrResourceMismatch) {
		t.Fatalf("foreign id: expected ErrResourceMismatch, got %v", err)
	}

	if err := svc.ReorderMedia(user, post.ID, []uint{second.ID, first.ID}); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	reordered, err := svc.Get(user, post.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reordered.Attachments[0].MediaID != second.ID {
		t.Fatalf("order not applied: %+v", reordered.Attachments)
	}
}

func TestPostService_AccessScopedToAssignedBrands(t *testing.T) {
	gdb := setupTestDB(t, "post-access")
	svc := NewPostService(gdb)

	agency := createAgency(t, gdb, "Studio")
	manager := createUser(t, gdb, agency.ID, "Mara", db.RoleManager)
	creator := createUser(t, gdb, agency.ID, "Cai", db.RoleCreator)
	assigned := createBrand(t, gdb, agency.ID, "acme")
	hidden := createBrand(t, gdb, agency.ID, "globex")
	assignBrand(t, gdb, creator, assigned)

	visible := createPost(t, gdb, assigned.ID, manager.ID, "Visible", db.PostStatusDraft)
	invisible := createPost(t, gdb, hidden.ID, manager.ID, "Hidden", db.PostStatusDraft)

	user := reloadUser(t, gdb, creator.ID)

	if _, err := svc.Get(user, visible.ID); err != nil {
		t.Fatalf("assigned brand: %v", err)
	}
	if _, err := svc.Get(user, invisible.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("unassigned brand: expected ErrPermissionDenied, got %v", err)
	}

	// Managers see every brand in the agency without assignments.
	list, err := svc.List(reloadUser(t, gdb, manager.ID), PostFilter{})
	if err != nil {
		t.Fatalf("manager list: %v", err)
	}
	if list.Total != 2 {
		t.Fatalf("manager should see 2 posts, got %d", list.Total)
	}

	scoped, err := svc.List(user, PostFilter{})
	if err != nil {
		t.Fatalf("creator list: %v", err)
	}
	if scoped.Total != 1 {
		t.Fatalf("creator should see 1 post, got %d", scoped.Total)
	}
}
