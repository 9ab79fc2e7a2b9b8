package csvfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/brokerdesk/intake/internal/app/domain/application"
	"github.com/brokerdesk/intake/internal/app/storage"
)

func testRecord(id string) application.Record {
	return application.Record{
		ApplicationID:  id,
		Status:         application.StatusPending,
		FirstName:      "John",
		LastName:       "Doe",
		DOB:            "01/15/1980",
		Address:        "1 Main St",
		City:           "Austin",
		State:          "TX",
		Zip:            "78701",
		PlanChoice:     "Gold",
		SubmissionDate: "05/01/2024",
	}
}

func TestStoreLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := Bootstrap(path); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	store := New(path)
	ctx := context.Background()

	if _, err := store.CreateApplication(ctx, testRecord("a1b2c3")); err != nil {
		t.Fatalf("create: %v", err)
	}

	// duplicate id, case-insensitive
	if _, err := store.CreateApplication(ctx, testRecord("A1B2C3")); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	rec, err := store.GetApplication(ctx, "A1B2C3")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.FirstName != "John" || rec.SubmissionDate != "05/01/2024" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	rec.Status = application.StatusReviewed
	if _, err := store.UpdateApplication(ctx, rec); err != nil {
		t.Fatalf("update: %v", err)
	}

	reviewed, err := store.ListApplicationsByStatus(ctx, application.StatusReviewed)
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if len(reviewed) != 1 {
		t.Fatalf("expected 1 reviewed record, got %d", len(reviewed))
	}

	matches, err := store.SearchApplicationsByName(ctx, "JOHN", "doe")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}

	ids, err := store.ListApplicationIDs(ctx)
	if err != nil {
		t.Fatalf("list ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != "a1b2c3" {
		t.Fatalf("unexpected ids: %v", ids)
	}

	if _, err := store.GetApplication(ctx, "zzzzzz"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := store.UpdateApplication(ctx, testRecord("zzzzzz")); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
}

func TestStoreMissingFile(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "nope.csv"))

	if _, err := store.GetApplication(context.Background(), "a1b2c3"); !errors.Is(err, storage.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, err := store.CreateApplication(context.Background(), testRecord("a1b2c3")); !errors.Is(err, storage.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on create, got %v", err)
	}
}

func TestBootstrapKeepsExistingData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := Bootstrap(path); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	store := New(path)
	if _, err := store.CreateApplication(context.Background(), testRecord("a1b2c3")); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := Bootstrap(path); err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	if _, err := store.GetApplication(context.Background(), "a1b2c3"); err != nil {
		t.Fatalf("record lost after bootstrap: %v", err)
	}
}

func TestReferenceDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book_of_business.csv")
	data := "plan,count,commission_rate\nGold,10,0.05\nSilver,25,0.03\nGold,5,0.05\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}

	rows, err := NewReferenceDataset(path).ListReferenceRows(context.Background())
	if err != nil {
		t.Fatalf("list rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Plan != "Gold" || rows[0].Count != 10 || rows[0].CommissionRate != 0.05 {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
}

func TestReferenceDatasetMissing(t *testing.T) {
	_, err := NewReferenceDataset(filepath.Join(t.TempDir(), "nope.csv")).ListReferenceRows(context.Background())
	if !errors.Is(err, storage.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestReferenceDatasetBadRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book_of_business.csv")
	data := "plan,count,commission_rate\nGold,ten,0.05\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}

	_, err := NewReferenceDataset(path).ListReferenceRows(context.Background())
	if !errors.Is(err, storage.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for bad count, got %v", err)
	}
}
