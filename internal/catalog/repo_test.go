package catalog

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"rickdex/pkg/database"
	"rickdex/pkg/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenMigrated(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleCharacters() []models.Character {
	return []models.Character{
		{
			ID: 1, Name: "Rick Sanchez", Status: "Alive", Species: "Human", Gender: "Male",
			Origin:   models.Place{Name: "Earth (C-137)"},
			Location: models.Place{Name: "Citadel of Ricks"},
			Image:    "https://example.test/1.jpeg",
			Episode:  []string{"https://example.test/episode/1", "https://example.test/episode/2"},
		},
		{ID: 2, Name: "Morty Smith", Status: "Alive", Species: "Human", Gender: "Male"},
		{ID: 8, Name: "Adjudicator Rick", Status: "Dead", Species: "Human", Gender: "Male"},
		{ID: 19, Name: "Antenna Rick", Status: "unknown", Species: "Human", Gender: "Male"},
		{ID: 3, Name: "Summer Smith", Status: "Alive", Species: "Human", Gender: "Female"},
	}
}

func TestUpsertAndGetByID(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	if err := repo.Upsert(ctx, sampleCharacters()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	c, err := repo.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if c == nil {
		t.Fatal("Expected character 1")
	}
	if c.Name != "Rick Sanchez" || c.Origin.Name != "Earth (C-137)" || c.Location.Name != "Citadel of Ricks" {
		t.Errorf("Unexpected character: %+v", c)
	}
	if len(c.Episode) != 2 {
		t.Errorf("Expected 2 episodes, got %d", len(c.Episode))
	}

	missing, err := repo.GetByID(ctx, 404)
	if err != nil || missing != nil {
		t.Errorf("Expected nil, nil for missing id, got %v, %v", missing, err)
	}
}

func TestUpsertReplaces(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	_ = repo.Upsert(ctx, []models.Character{{ID: 2, Name: "Morty Smith", Status: "Alive"}})
	if err := repo.Upsert(ctx, []models.Character{{ID: 2, Name: "Evil Morty", Status: "Alive"}}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	c, _ := repo.GetByID(ctx, 2)
	if c == nil || c.Name != "Evil Morty" {
		t.Errorf("Expected replaced name, got %+v", c)
	}
	if c != nil && (c.Episode == nil || len(c.Episode) != 0) {
		t.Errorf("Expected empty episode list, got %v", c.Episode)
	}
}

func TestListAndCount(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()
	if err := repo.Upsert(ctx, sampleCharacters()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	tests := []struct {
		name  string
		q     ListQuery
		total int
		ids   []int
	}{
		{"all", ListQuery{}, 5, []int{1, 2, 3, 8, 19}},
		{"name substring", ListQuery{Q: "RICK"}, 3, []int{1, 8, 19}},
		{"status", ListQuery{Status: "dead"}, 1, []int{8}},
		{"gender", ListQuery{Gender: "female"}, 1, []int{3}},
		{"combined", ListQuery{Q: "smith", Gender: "male"}, 1, []int{2}},
		{"paged", ListQuery{Limit: 2, Offset: 2}, 5, []int{3, 8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, err := repo.Count(ctx, tt.q)
			if err != nil {
				t.Fatalf("count: %v", err)
			}
			if total != tt.total {
				t.Errorf("Expected total %d, got %d", tt.total, total)
			}

			items, err := repo.List(ctx, tt.q)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(items) != len(tt.ids) {
				t.Fatalf("Expected %d items, got %d", len(tt.ids), len(items))
			}
			for i, id := range tt.ids {
				if items[i].ID != id {
					t.Errorf("item %d: expected id %d, got %d", i, id, items[i].ID)
				}
			}
		})
	}
}

func TestBuildListSQLClampsLimit(t *testing.T) {
	_, args := buildListSQL(ListQuery{Limit: 1000, Offset: -5}, false)
	if len(args) != 2 {
		t.Fatalf("Expected 2 args, got %d", len(args))
	}
	if args[0] != 20 || args[1] != 0 {
		t.Errorf("Expected limit 20 offset 0, got %v", args)
	}
}

func TestListTreatsWildcardsLiterally(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	chars := []models.Character{
		{ID: 1, Name: "Rick Sanchez"},
		{ID: 2, Name: "Mr. Poopy_Butthole"},
		{ID: 3, Name: "100% Jerry"},
		{ID: 4, Name: "Mr. PoopyXButthole"},
	}
	if err := repo.Upsert(ctx, chars); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	tests := []struct {
		q   string
		ids []int
	}{
		{"%", []int{3}},
		{"_", []int{2}},
		{"poopy_", []int{2}},
		{"0% j", []int{3}},
	}
	for _, tt := range tests {
		items, err := repo.List(ctx, ListQuery{Q: tt.q})
		if err != nil {
			t.Fatalf("%q: %v", tt.q, err)
		}
		if len(items) != len(tt.ids) {
			t.Errorf("%q: expected %v, got %d items", tt.q, tt.ids, len(items))
			continue
		}
		for i, id := range tt.ids {
			if items[i].ID != id {
				t.Errorf("%q: expected id %d, got %d", tt.q, id, items[i].ID)
			}
		}
	}
}

func TestCorruptEpisodesIsAnError(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, `INSERT INTO characters (id, name, episodes) VALUES (5, 'Jerry Smith', 'not json')`); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if _, err := repo.GetByID(ctx, 5); err == nil {
		t.Error("Expected error for corrupt episodes on GetByID")
	}
	if _, err := repo.List(ctx, ListQuery{}); err == nil {
		t.Error("Expected error for corrupt episodes on List")
	}
}
