// Package seed holds the bundled question pool and the demo users.
package seed

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"devquiz/internal/domain"
)

//go:embed questions.yaml
var bundled []byte

// Data is the content of a seed file.
type Data struct {
	Users     []domain.User     `yaml:"users"`
	Questions []domain.Question `yaml:"questions"`
}

type yamlUser struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

type yamlData struct {
	Users     []yamlUser        `yaml:"users"`
	Questions []domain.Question `yaml:"questions"`
}

// Parse decodes and validates seed YAML.
func Parse(raw []byte) (Data, error) {
	var doc yamlData
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Data{}, fmt.Errorf("decode seed: %w", err)
	}

	seen := make(map[string]bool, len(doc.Questions))
	for _, q := range doc.Questions {
		if err := q.Validate(); err != nil {
			return Data{}, err
		}
		if seen[q.ID] {
			return Data{}, fmt.Errorf("%w: duplicate id %s", domain.ErrInvalidQuestion, q.ID)
		}
		seen[q.ID] = true
	}

	data := Data{Questions: doc.Questions}
	for _, u := range doc.Users {
		data.Users = append(data.Users, domain.User{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	return data, nil
}

// Load reads a seed file, falling back to the bundled pool when path is empty.
func Load(path string) (Data, error) {
	if path == "" {
		return Parse(bundled)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Data{}, err
	}
	return Parse(raw)
}

// Bundled returns the embedded seed data.
func Bundled() Data {
	data, err := Parse(bundled)
	if err != nil {
		panic(fmt.Sprintf("bundled seed is invalid: %v", err))
	}
	return data
}

// Questions returns the embedded question pool.
func Questions() []domain.Question {
	return Bundled().Questions
}

// DemoUserID owns the demo session recorded by seeding.
const DemoUserID = "demo"

// DemoSessions builds one completed frontend session for the demo user: the first
// five frontend questions with four answered correctly.
func DemoSessions(questions []domain.Question, now time.Time) []domain.SessionRecord {
	var answers []domain.AnswerRecord
	for _, q := range questions {
		if q.Category != domain.CategoryFrontend {
			continue
		}
		answer := domain.AnswerRecord{QuestionID: q.ID, UserAnswer: q.Correct, IsCorrect: true}
		if len(answers) == 4 {
			answer.UserAnswer = (q.Correct + 1) % len(q.Options)
			answer.IsCorrect = false
		}
		answers = append(answers, answer)
		if len(answers) == 5 {
			break
		}
	}
	if len(answers) < 5 {
		return nil
	}
	return []domain.SessionRecord{{
		ID:             "demo-session-1",
		UserID:         DemoUserID,
		Category:       domain.CategoryFrontend,
		TotalQuestions: 5,
		CorrectAnswers: 4,
		Score:          80,
		TimeSpent:      600,
		CompletedAt:    now.UTC(),
		Answers:        answers,
	}}
}
