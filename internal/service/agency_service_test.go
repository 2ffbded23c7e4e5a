package service

import (
	"errors"
	"testing"

	"github.com/vernard/PostReviewer/internal/db"
)

func TestAgencyService_StorageReportNearLimit(t *testing.T) {
	gdb := setupTestDB(t, "agency-storage")
	svc := NewAgencyService(gdb)

	agency := createAgency(t, gdb, "Studio")
	if err := gdb.Model(agency).Updates(map[string]any{
		"storage_quota": int64(1000),
		"storage_used":  int64(850),
	}).Error; err != nil {
		t.Fatalf("seed storage: %v", err)
	}
	admin := createUser(t, gdb, agency.ID, "Ada", db.RoleAdmin)

	report, err := svc.Storage(reloadUser(t, gdb, admin.ID))
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	if report.Percentage != 85.0 {
		t.Fatalf("expected 85%%, got %v", report.Percentage)
	}
	if !report.IsNearLimit {
		t.Fatal("85% usage should flag is_near_limit")
	}

	if err := gdb.Model(agency).Update("storage_used", int64(200)).Error; err != nil {
		t.Fatalf("reset usage: %v", err)
	}
	report, err = svc.Storage(reloadUser(t, gdb, admin.ID))
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	if report.IsNearLimit {
		t.Fatal("20% usage should not flag is_near_limit")
	}
}

func TestAgencyService_RecalculateStorage(t *testing.T) {
	gdb := setupTestDB(t, "agency-recalc")
	svc := NewAgencyService(gdb)

	agency := createAgency(t, gdb, "Studio")
	admin := createUser(t, gdb, agency.ID, "Ada", db.RoleAdmin)
	creator := createUser(t, gdb, agency.ID, "Cai", db.RoleCreator)
	brand := createBrand(t, gdb, agency.ID, "acme")
	createMedia(t, gdb, brand.ID, admin.ID, 3000)
	createMedia(t, gdb, brand.ID, admin.ID, 2000)

	// Drift the counter on purpose.
	if err := gdb.Model(agency).Update("storage_used", int64(999999)).Error; err != nil {
		t.Fatalf("drift counter: %v", err)
	}

	report, err := svc.RecalculateStorage(reloadUser(t, gdb, admin.ID))
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if report.Used != 5000 {
		t.Fatalf("expected 5000 bytes, got %d", report.Used)
	}

	if _, err := svc.RecalculateStorage(reloadUser(t, gdb, creator.ID)); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for non-admin, got %v", err)
	}
}

func TestAgencyService_DashboardScopedToVisibleBrands(t *testing.T) {
	gdb := setupTestDB(t, "agency-dashboard")
	svc := NewAgencyService(gdb)

	agency := createAgency(t, gdb, "Studio")
	manager := createUser(t, gdb, agency.ID, "Mara", db.RoleManager)
	creator := createUser(t, gdb, agency.ID, "Cai", db.RoleCreator)
	assigned := createBrand(t, gdb, agency.ID, "acme")
	hidden := createBrand(t, gdb, agency.ID, "globex")
	assignBrand(t, gdb, creator, assigned)

	createPost(t, gdb, assigned.ID, manager.ID, "A1", db.PostStatusDraft)
	createPost(t, gdb, assigned.ID, manager.ID, "A2", db.PostStatusApproved)
	createPost(t, gdb, hidden.ID, manager.ID, "H1", db.PostStatusDraft)

	managerStats, err := svc.Dashboard(reloadUser(t, gdb, manager.ID))
	if err != nil {
		t.Fatalf("manager dashboard: %v", err)
	}
	if managerStats.Posts != 3 || managerStats.Brands != 2 {
		t.Fatalf("manager sees %d posts across %d brands", managerStats.Posts, managerStats.Brands)
	}
	if managerStats.PostsByStatus[db.PostStatusDraft] != 2 {
		t.Fatalf("expected 2 drafts, got %d", managerStats.PostsByStatus[db.PostStatusDraft])
	}
	if managerStats.TeamSize != 2 {
		t.Fatalf("expected team of 2, got %d", managerStats.TeamSize)
	}

	creatorStats, err := svc.Dashboard(reloadUser(t, gdb, creator.ID))
	if err != nil {
		t.Fatalf("creator dashboard: %v", err)
	}
	if creatorStats.Posts != 2 || creatorStats.Brands != 1 {
		t.Fatalf("creator sees %d posts across %d brands", creatorStats.Posts, creatorStats.Brands)
	}
}

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 << 20, "5.0 MB"},
		{db.DefaultStorageQuota, "5.0 GB"},
	}
	for _, tc := range cases {
		if got := db.FormatBytes(tc.in); got != tc.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
