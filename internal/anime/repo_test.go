package anime

import (
	"context"
	"testing"

	"animespotlight/pkg/database"
	"animespotlight/pkg/models"
)

func ptr[T any](v T) *T { return &v }

func setupTestRepo(t *testing.T) *Repo {
	t.Helper()

	db, err := database.Open(database.Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return NewRepo(db)
}

func sampleFields() models.AnimeFields {
	return models.AnimeFields{
		Title:        "Cowboy Bebop",
		EnTitle:      ptr("Cowboy Bebop"),
		Description:  "Bounty hunters drift through the solar system.",
		Rating:       ptr(9.0),
		StartDate:    ptr("1998-04-03"),
		EndDate:      ptr("1999-04-24"),
		Subtype:      models.SubtypeTV,
		Status:       models.StatusFinished,
		PosterImage:  "https://example.com/bebop.jpg",
		EpisodeCount: ptr(26),
		Categories:   []string{"Sci-Fi", "Action"},
	}
}

func TestCreateAndGetByID(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, sampleFields())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == 0 {
		t.Error("expected a non-zero id")
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected the created entry, got nil")
	}

	if got.Title != "Cowboy Bebop" {
		t.Errorf("expected title 'Cowboy Bebop', got %q", got.Title)
	}
	if got.Rating == nil || *got.Rating != 9.0 {
		t.Errorf("unexpected rating: %v", got.Rating)
	}
	if got.StartDate == nil || *got.StartDate != "1998-04-03" {
		t.Errorf("unexpected start date: %v", got.StartDate)
	}
	if len(got.Categories) != 2 || got.Categories[0] != "Sci-Fi" {
		t.Errorf("unexpected categories: %v", got.Categories)
	}
}

func TestCreateWithNilOptionals(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	f := sampleFields()
	f.EnTitle = nil
	f.Rating = nil
	f.EndDate = nil
	f.CoverImage = nil
	f.EpisodeCount = nil
	f.Status = models.StatusCurrent

	created, err := repo.Create(ctx, f)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.EnTitle != nil || got.Rating != nil || got.EndDate != nil ||
		got.CoverImage != nil || got.EpisodeCount != nil {
		t.Errorf("expected nil optionals to round-trip as nil, got %+v", got.AnimeFields)
	}
}

func TestGetByID_Missing(t *testing.T) {
	repo := setupTestRepo(t)

	got, err := repo.GetByID(context.Background(), 999)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for a missing entry, got %+v", got)
	}
}

func TestList(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	animes, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(animes) != 0 {
		t.Errorf("expected an empty list, got %d entries", len(animes))
	}

	first := sampleFields()
	second := sampleFields()
	second.Title = "Trigun"
	repo.Create(ctx, first)
	repo.Create(ctx, second)

	animes, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(animes) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(animes))
	}
	if animes[0].Title != "Cowboy Bebop" || animes[1].Title != "Trigun" {
		t.Errorf("expected insertion order, got %q then %q", animes[0].Title, animes[1].Title)
	}
}

func TestUpdate(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, sampleFields())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	f := sampleFields()
	f.Title = "Cowboy Bebop (remastered)"
	f.Rating = ptr(9.5)
	f.Categories = []string{"Sci-Fi"}

	updated, err := repo.Update(ctx, created.ID, f)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated == nil {
		t.Fatal("expected the updated entry, got nil")
	}
	if updated.Title != "Cowboy Bebop (remastered)" {
		t.Errorf("unexpected title: %q", updated.Title)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Rating == nil || *got.Rating != 9.5 {
		t.Errorf("update not persisted, rating: %v", got.Rating)
	}
	if len(got.Categories) != 1 {
		t.Errorf("update not persisted, categories: %v", got.Categories)
	}
}

func TestUpdate_Missing(t *testing.T) {
	repo := setupTestRepo(t)

	updated, err := repo.Update(context.Background(), 999, sampleFields())
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated != nil {
		t.Errorf("expected nil for a missing entry, got %+v", updated)
	}
}

func TestDelete(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, sampleFields())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	deleted, err := repo.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !deleted {
		t.Error("expected deleted=true for an existing entry")
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got != nil {
		t.Errorf("entry still present after delete: %+v", got)
	}

	deleted, err = repo.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted {
		t.Error("expected deleted=false for a missing entry")
	}
}
