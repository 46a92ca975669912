package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus/hooks/test"

	"devquiz/internal/app"
	"devquiz/internal/domain"
	"devquiz/internal/infra/memory"
)

func startSession(t *testing.T, store *SessionStore, now func() time.Time) app.SessionView {
	t.Helper()
	logger, _ := test.NewNullLogger()
	service := app.NewQuizService(
		memory.NewStaticQuestionLoader(sampleQuestions()),
		store,
		nil,
		logger,
		app.WithServiceClock(now),
	)
	view, err := service.Start(context.Background(), app.StartRequest{Category: domain.CategoryBackend, UserID: "u1"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return view
}

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(newClient(mr), time.Minute)
	view := startSession(t, store, time.Now)

	key := "quiz:session:" + view.ID
	if !mr.Exists(key) {
		t.Fatalf("expected redis key to be set")
	}
	if got, _ := mr.Get(key); got != "u1" {
		t.Fatalf("expected marker to carry user id, got %q", got)
	}

	store.Delete(view.ID)
	if mr.Exists(key) {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok := store.Get(view.ID); ok {
		t.Fatalf("expected session removed")
	}
}

func TestSessionStoreExpiresWithMarker(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(newClient(mr), time.Minute)
	view := startSession(t, store, time.Now)

	mr.FastForward(50 * time.Second)
	if _, ok := store.Get(view.ID); !ok {
		t.Fatalf("expected session alive before ttl")
	}
	// the lookup above refreshed the marker
	mr.FastForward(50 * time.Second)
	if _, ok := store.Get(view.ID); !ok {
		t.Fatalf("expected refreshed session alive")
	}

	mr.FastForward(2 * time.Minute)
	if _, ok := store.Get(view.ID); ok {
		t.Fatalf("expected session gone once its marker expired")
	}
}

func TestSessionStoreDeleteIdle(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewSessionStore(newClient(mr), time.Hour)
	view := startSession(t, store, func() time.Time { return now })

	if removed := store.DeleteIdle(now.Add(-time.Minute)); removed != 0 {
		t.Fatalf("fresh session should survive, removed %d", removed)
	}
	if removed := store.DeleteIdle(now.Add(time.Minute)); removed != 1 {
		t.Fatalf("expected idle session removed, removed %d", removed)
	}
	if mr.Exists("quiz:session:" + view.ID) {
		t.Fatalf("expected marker removed with idle session")
	}
}
