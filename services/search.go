package services

import (
	"context"
	"strings"

	"github.com/mytaskflow/backend/database/models"
	"github.com/mytaskflow/backend/database/repositories"
	"github.com/sahilm/fuzzy"
)

// habitSearchItems implements fuzzy.Source over a habit list.
type habitSearchItems []*models.Habit

func (h habitSearchItems) String(i int) string {
	return strings.ToLower(h[i].Name + " " + h[i].Description)
}

func (h habitSearchItems) Len() int {
	return len(h)
}

// SearchService ranks the user's active habits against a free-text query.
type SearchService struct {
	habits repositories.HabitRepository
}

func NewSearchService(habits repositories.HabitRepository) *SearchService {
	return &SearchService{habits: habits}
}

// Search returns habits matching query, best match first. An empty query
// returns the full active list unranked.
func (s *SearchService) Search(ctx context.Context, userID, query string) ([]*models.Habit, error) {
	habits, err := s.habits.GetActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return habits, nil
	}

	items := habitSearchItems(habits)
	matches := fuzzy.FindFrom(query, items)

	results := make([]*models.Habit, 0, len(matches))
	for _, m := range matches {
		results = append(results, habits[m.Index])
	}
	return results, nil
}
