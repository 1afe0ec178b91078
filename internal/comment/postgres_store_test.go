package comment

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/njchilds90/allowhtml/internal/database"
)

func newTestPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := database.Open(dbURL)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Ping(); err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	if err := database.RunMigrations(dbURL); err != nil {
		t.Fatalf("migrations: %v", err)
	}

	s := NewPostgresStore(db)
	if err := s.Clear(context.Background()); err != nil {
		t.Fatalf("clear: %v", err)
	}
	return s
}

func TestPostgresStore_AddListClear(t *testing.T) {
	s := newTestPostgresStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	want := []Comment{
		{ID: uuid.New(), Body: "<b>first</b>", CreatedAt: base},
		{ID: uuid.New(), Body: "second", CreatedAt: base.Add(time.Second)},
	}
	for _, c := range want {
		if err := s.Add(ctx, c); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	got, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("List returned %d comments, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Body != want[i].Body || !got[i].CreatedAt.Equal(want[i].CreatedAt) {
			t.Errorf("comment %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if got, _ := s.List(ctx); len(got) != 0 {
		t.Errorf("List after Clear returned %d comments", len(got))
	}
}
