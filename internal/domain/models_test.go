package domain

import (
	"errors"
	"testing"
	"time"
)

func validQuestion() Question {
	return Question{
		ID:          "q1",
		Prompt:      "Pick one",
		Options:     []string{"a", "b"},
		Correct:     1,
		Explanation: "b it is",
		Difficulty:  DifficultyEasy,
		Category:    CategoryBackend,
		Tags:        []string{"go"},
	}
}

func TestQuestionValidate(t *testing.T) {
	if err := validQuestion().Validate(); err != nil {
		t.Fatalf("expected valid question, got %v", err)
	}

	cases := map[string]func(*Question){
		"missing id":      func(q *Question) { q.ID = "" },
		"missing prompt":  func(q *Question) { q.Prompt = "" },
		"one option":      func(q *Question) { q.Options = []string{"a"} },
		"correct too big": func(q *Question) { q.Correct = 2 },
		"negative":        func(q *Question) { q.Correct = -1 },
		"bad difficulty":  func(q *Question) { q.Difficulty = "extreme" },
		"bad category":    func(q *Question) { q.Category = "mobile" },
	}
	for name, mutate := range cases {
		q := validQuestion()
		mutate(&q)
		if err := q.Validate(); !errors.Is(err, ErrInvalidQuestion) {
			t.Fatalf("%s: expected ErrInvalidQuestion, got %v", name, err)
		}
	}
}

func TestPublicHidesAnswerKey(t *testing.T) {
	q := validQuestion()
	p := q.Public()
	if p.ID != q.ID || p.Prompt != q.Prompt || len(p.Options) != 2 {
		t.Fatalf("public view lost fields: %+v", p)
	}
	if !q.HasTag("go") || q.HasTag("rust") {
		t.Fatalf("unexpected HasTag result")
	}
}

func TestParseCategoryAndDifficulty(t *testing.T) {
	if c, ok := ParseCategory("  DevOps "); !ok || c != CategoryDevOps {
		t.Fatalf("expected devops, got %q %v", c, ok)
	}
	if _, ok := ParseCategory("mobile"); ok {
		t.Fatalf("mobile is not a category")
	}
	if d, ok := ParseDifficulty("HARD"); !ok || d != DifficultyHard {
		t.Fatalf("expected hard, got %q %v", d, ok)
	}
	if len(Categories) != 4 {
		t.Fatalf("expected 4 categories, got %d", len(Categories))
	}
}

func TestLeaderboardRanking(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	high := LeaderboardEntry{Score: 90, TimeSpent: 500, CompletedAt: base}
	fast := LeaderboardEntry{Score: 80, TimeSpent: 100, CompletedAt: base}
	slow := LeaderboardEntry{Score: 80, TimeSpent: 300, CompletedAt: base}
	later := LeaderboardEntry{Score: 80, TimeSpent: 100, CompletedAt: base.Add(time.Hour)}

	if !high.RanksBefore(fast) || fast.RanksBefore(high) {
		t.Fatalf("higher score must rank first")
	}
	if !fast.RanksBefore(slow) {
		t.Fatalf("equal score: less time must rank first")
	}
	if !fast.RanksBefore(later) || later.RanksBefore(fast) {
		t.Fatalf("full tie: earlier completion must rank first")
	}
}
