package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/mbrandolfi/specchio/internal/catalog"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCatalogRepository_SeedAndList(t *testing.T) {
	s := newTestStore(t)
	repo := s.Catalog()

	count, err := repo.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Fatalf("fresh store has %d items", count)
	}

	if err := repo.Seed(catalog.Default()); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	items, err := repo.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := catalog.Default()
	if len(items) != len(want) {
		t.Fatalf("listed %d items, want %d", len(items), len(want))
	}
	for i := range items {
		if items[i].ID != want[i].ID {
			t.Errorf("item %d: id %s, want %s (order must be preserved)", i, items[i].ID, want[i].ID)
		}
		if len(items[i].Scenes) != len(want[i].Scenes) {
			t.Errorf("item %s: %d scenes, want %d", items[i].ID, len(items[i].Scenes), len(want[i].Scenes))
		}
	}
}

func TestCatalogRepository_SeedReplaces(t *testing.T) {
	s := newTestStore(t)
	repo := s.Catalog()

	if err := repo.Seed(catalog.Default()); err != nil {
		t.Fatalf("first seed: %v", err)
	}

	replacement := []catalog.Item{
		{
			ID: "only", Name: "Only Item", GarmentURL: "https://example.com/only.jpg",
			Scenes: []catalog.Scene{{ID: "only-s1", Label: "Studio", Prompt: "p"}},
		},
	}
	if err := repo.Seed(replacement); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	items, err := repo.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].ID != "only" {
		t.Fatalf("expected the replacement catalog, got %+v", items)
	}
}

func TestCatalogRepository_SeedRejectsInvalid(t *testing.T) {
	s := newTestStore(t)

	err := s.Catalog().Seed([]catalog.Item{{ID: "broken"}})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if count, _ := s.Catalog().Count(); count != 0 {
		t.Fatalf("failed seed left %d items behind", count)
	}
}

func TestLookRepository_RecordAndList(t *testing.T) {
	s := newTestStore(t)
	looks := s.Looks()

	if err := looks.RecordLook("jacket", "s1", 1, []byte("img1"), ""); err != nil {
		t.Fatalf("RecordLook: %v", err)
	}
	if err := looks.RecordLook("jacket", "s2", 1, nil, "render failed"); err != nil {
		t.Fatalf("RecordLook: %v", err)
	}

	records, err := looks.ListRecent(10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	byScene := make(map[string]LookRecord)
	for _, rec := range records {
		byScene[rec.SceneID] = rec
		if rec.ID == "" {
			t.Error("record missing id")
		}
		if rec.Epoch != 1 || rec.ItemID != "jacket" {
			t.Errorf("record fields: %+v", rec)
		}
	}
	if !byScene["s1"].HasImage || byScene["s1"].Error != "" {
		t.Errorf("s1 record: %+v", byScene["s1"])
	}
	if byScene["s2"].HasImage || byScene["s2"].Error != "render failed" {
		t.Errorf("s2 record: %+v", byScene["s2"])
	}
}

func TestLookRepository_ListRecentLimit(t *testing.T) {
	s := newTestStore(t)
	looks := s.Looks()

	for i := 0; i < 5; i++ {
		if err := looks.RecordLook("jacket", "s1", uint64(i), []byte("img"), ""); err != nil {
			t.Fatalf("RecordLook: %v", err)
		}
	}

	records, err := looks.ListRecent(3)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
}

func TestLookRepository_GetImage(t *testing.T) {
	s := newTestStore(t)
	looks := s.Looks()

	if err := looks.RecordLook("jacket", "s1", 1, []byte("img1"), ""); err != nil {
		t.Fatalf("RecordLook: %v", err)
	}
	records, err := looks.ListRecent(1)
	if err != nil || len(records) != 1 {
		t.Fatalf("ListRecent: %v (%d records)", err, len(records))
	}

	image, err := looks.GetImage(records[0].ID)
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	if string(image) != "img1" {
		t.Errorf("image = %q", image)
	}

	if _, err := looks.GetImage("no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLookRepository_GetImage_NoPayload(t *testing.T) {
	s := newTestStore(t)
	looks := s.Looks()

	// A failed look has no image; fetching it reads as not found
	if err := looks.RecordLook("jacket", "s1", 1, nil, "render failed"); err != nil {
		t.Fatalf("RecordLook: %v", err)
	}
	records, _ := looks.ListRecent(1)
	if _, err := looks.GetImage(records[0].ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for an imageless record, got %v", err)
	}
}

func TestStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Catalog().Seed(catalog.Default()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	s.Close()

	s2, err := New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	count, err := s2.Catalog().Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != len(catalog.Default()) {
		t.Fatalf("expected %d items after reopen, got %d", len(catalog.Default()), count)
	}
}
