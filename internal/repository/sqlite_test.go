package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mr1hm/go-disaster-response/internal/models"
)

func setupTestDB(t *testing.T, historyLimit int) *SQLiteDB {
	t.Helper()
	db, err := NewSQLiteDB(":memory:", historyLimit)
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	return db
}

func testRecord(id string, createdAt time.Time) *models.NotificationRecord {
	return &models.NotificationRecord{
		ID:     id,
		Action: models.ActionAlert,
		Region: "Zone A",
		Status: models.StatusPending,
		Recipients: []models.RecipientCount{
			{Type: "lead", Count: 1},
			{Type: "members", Count: 2},
		},
		CreatedAt: createdAt,
	}
}

func TestSQLiteDB_AddAndGet(t *testing.T) {
	db := setupTestDB(t, 100)
	defer db.Close()

	ctx := context.Background()
	rec := testRecord("ntf_1", time.Now())

	if err := db.Add(ctx, rec); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	got, err := db.GetByID(ctx, "ntf_1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Action != models.ActionAlert {
		t.Errorf("expected action alert, got '%s'", got.Action)
	}
	if got.Region != "Zone A" {
		t.Errorf("expected region 'Zone A', got '%s'", got.Region)
	}
	if got.Status != models.StatusPending {
		t.Errorf("expected pending status, got '%s'", got.Status)
	}
	if len(got.Recipients) != 2 || got.Recipients[1].Count != 2 {
		t.Errorf("recipients summary not preserved: %+v", got.Recipients)
	}
}

func TestSQLiteDB_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t, 100)
	defer db.Close()

	_, err := db.GetByID(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteDB_UpdateStatus(t *testing.T) {
	db := setupTestDB(t, 100)
	defer db.Close()

	ctx := context.Background()
	if err := db.Add(ctx, testRecord("ntf_1", time.Now())); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if err := db.UpdateStatus(ctx, "ntf_1", models.StatusSuccess); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	got, err := db.GetByID(ctx, "ntf_1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.StatusSuccess {
		t.Errorf("expected success, got '%s'", got.Status)
	}

	// Terminal records never transition again
	err = db.UpdateStatus(ctx, "ntf_1", models.StatusError)
	if !errors.Is(err, ErrNotPending) {
		t.Errorf("expected ErrNotPending for second transition, got %v", err)
	}

	err = db.UpdateStatus(ctx, "missing", models.StatusError)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestSQLiteDB_List_MostRecentFirst(t *testing.T) {
	db := setupTestDB(t, 100)
	defer db.Close()

	ctx := context.Background()
	base := time.Now()
	for i := 0; i < 3; i++ {
		rec := testRecord(fmt.Sprintf("ntf_%d", i), base.Add(time.Duration(i)*time.Second))
		if err := db.Add(ctx, rec); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	records, err := db.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].ID != "ntf_2" || records[2].ID != "ntf_0" {
		t.Errorf("expected most-recent-first order, got %s..%s", records[0].ID, records[2].ID)
	}
}

func TestSQLiteDB_List_Filters(t *testing.T) {
	db := setupTestDB(t, 100)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()

	alert := testRecord("ntf_alert", now)
	evac := testRecord("ntf_evac", now.Add(time.Second))
	evac.Action = models.ActionEvacuation
	evac.Status = models.StatusSuccess
	for _, rec := range []*models.NotificationRecord{alert, evac} {
		if err := db.Add(ctx, rec); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	action := models.ActionEvacuation
	records, err := db.List(ctx, Filter{Action: &action})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 1 || records[0].ID != "ntf_evac" {
		t.Errorf("action filter returned wrong records: %+v", records)
	}

	status := models.StatusPending
	records, err = db.List(ctx, Filter{Status: &status})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 1 || records[0].ID != "ntf_alert" {
		t.Errorf("status filter returned wrong records: %+v", records)
	}

	records, err = db.List(ctx, Filter{Limit: 1})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 record with limit, got %d", len(records))
	}
}

func TestSQLiteDB_HistoryCap(t *testing.T) {
	db := setupTestDB(t, 3)
	defer db.Close()

	ctx := context.Background()
	base := time.Now()
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("ntf_%d", i)
		if err := db.Add(ctx, testRecord(id, base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if err := db.UpdateStatus(ctx, id, models.StatusSuccess); err != nil {
			t.Fatalf("UpdateStatus failed: %v", err)
		}
	}

	records, err := db.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected history capped at 3, got %d", len(records))
	}
	// Oldest records were evicted
	if records[0].ID != "ntf_4" || records[2].ID != "ntf_2" {
		t.Errorf("expected newest 3 retained, got %s..%s", records[0].ID, records[2].ID)
	}
}

func TestSQLiteDB_PruneKeepsPending(t *testing.T) {
	db := setupTestDB(t, 2)
	defer db.Close()

	ctx := context.Background()
	base := time.Now()

	// Oldest record stays pending; the rest resolve immediately.
	if err := db.Add(ctx, testRecord("ntf_inflight", base)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	for i := 1; i <= 3; i++ {
		id := fmt.Sprintf("ntf_%d", i)
		if err := db.Add(ctx, testRecord(id, base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if err := db.UpdateStatus(ctx, id, models.StatusSuccess); err != nil {
			t.Fatalf("UpdateStatus failed: %v", err)
		}
	}

	// The pending record outlives the cap even though it is the oldest row.
	got, err := db.GetByID(ctx, "ntf_inflight")
	if err != nil {
		t.Fatalf("pending record was evicted: %v", err)
	}
	if got.Status != models.StatusPending {
		t.Fatalf("expected pending, got '%s'", got.Status)
	}

	// It can still resolve, and once terminal it becomes prunable again.
	if err := db.UpdateStatus(ctx, "ntf_inflight", models.StatusError); err != nil {
		t.Fatalf("UpdateStatus on surviving pending record failed: %v", err)
	}
	if err := db.Add(ctx, testRecord("ntf_4", base.Add(4*time.Second))); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := db.GetByID(ctx, "ntf_inflight"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected resolved record to be pruned, got %v", err)
	}
}

func TestSQLiteDB_DuplicateAdd(t *testing.T) {
	db := setupTestDB(t, 100)
	defer db.Close()

	ctx := context.Background()
	rec := testRecord("dup", time.Now())

	if err := db.Add(ctx, rec); err != nil {
		t.Fatalf("first Add failed: %v", err)
	}
	if err := db.Add(ctx, rec); err == nil {
		t.Error("expected error for duplicate ID, got nil")
	}
}
