package domain

import "strings"

// Category partitions the question pool into topic areas.
type Category string

const (
	CategoryFrontend Category = "frontend"
	CategoryBackend  Category = "backend"
	CategoryDatabase Category = "database"
	CategoryDevOps   Category = "devops"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryFrontend, CategoryBackend, CategoryDatabase, CategoryDevOps}

// ParseCategory normalizes raw input and reports whether it names a known category.
func ParseCategory(raw string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	return c, c.Valid()
}

func (c Category) Valid() bool {
	switch c {
	case CategoryFrontend, CategoryBackend, CategoryDatabase, CategoryDevOps:
		return true
	}
	return false
}

func (c Category) String() string { return string(c) }

// Difficulty is an ordinal label shown to users; it does not affect scoring.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

func ParseDifficulty(raw string) (Difficulty, bool) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(raw)))
	return d, d.Valid()
}

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}
