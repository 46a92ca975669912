package app

import (
	"context"
	"fmt"

	"devquiz/internal/domain"
)

// QuestionFilter narrows a catalog listing. Zero fields match everything.
type QuestionFilter struct {
	Category   domain.Category
	Difficulty domain.Difficulty
	Tag        string
}

func (f QuestionFilter) matches(q domain.Question) bool {
	if f.Difficulty != "" && q.Difficulty != f.Difficulty {
		return false
	}
	if f.Tag != "" && !q.HasTag(f.Tag) {
		return false
	}
	return true
}

// ListQuestions returns public views of the questions matching filter.
func (s *QuizService) ListQuestions(ctx context.Context, filter QuestionFilter) ([]domain.PublicQuestion, error) {
	categories := domain.Categories
	if filter.Category != "" {
		if !filter.Category.Valid() {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, filter.Category)
		}
		categories = []domain.Category{filter.Category}
	}

	out := make([]domain.PublicQuestion, 0)
	for _, c := range categories {
		pool, err := s.questions.QuestionsByCategory(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("load %s questions: %w", c, err)
		}
		for _, q := range pool {
			if filter.matches(q) {
				out = append(out, q.Public())
			}
		}
	}
	return out, nil
}

// Catalog summarizes the whole question pool.
func (s *QuizService) Catalog(ctx context.Context) (domain.CatalogStats, error) {
	var all []domain.Question
	for _, c := range domain.Categories {
		pool, err := s.questions.QuestionsByCategory(ctx, c)
		if err != nil {
			return domain.CatalogStats{}, fmt.Errorf("load %s questions: %w", c, err)
		}
		all = append(all, pool...)
	}
	return BuildCatalog(all), nil
}

// BuildCatalog counts questions per category, difficulty and tag in one pass. Tag
// counts are kept both pool-wide and per category.
func BuildCatalog(questions []domain.Question) domain.CatalogStats {
	stats := domain.CatalogStats{
		ByCategory: make(map[domain.Category]domain.CategoryCount, len(domain.Categories)),
		ByTag:      make(map[string]int),
	}
	for _, c := range domain.Categories {
		byDifficulty := make(map[domain.Difficulty]int, len(domain.Difficulties))
		for _, d := range domain.Difficulties {
			byDifficulty[d] = 0
		}
		stats.ByCategory[c] = domain.CategoryCount{ByDifficulty: byDifficulty, ByTag: make(map[string]int)}
	}

	for _, q := range questions {
		stats.Total++
		count, known := stats.ByCategory[q.Category]
		if known {
			count.Total++
			if q.Difficulty.Valid() {
				count.ByDifficulty[q.Difficulty]++
			}
			stats.ByCategory[q.Category] = count
		}
		for _, tag := range q.Tags {
			stats.ByTag[tag]++
			if known {
				count.ByTag[tag]++
			}
		}
	}
	return stats
}
