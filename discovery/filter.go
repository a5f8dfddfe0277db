// Package discovery holds the pure ranking logic behind podcast browsing:
// the filter/sort pipeline used by listing endpoints and the similarity
// scorer used for "more like this". Nothing here touches the database;
// callers pass in a snapshot and get a new slice back.
package discovery

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/uttkarsh123-shiv/SoundNest-sub000/models"
)

// Filter narrows, orders and truncates items according to q. items is not
// modified. Ties keep their input order.
func Filter(items []models.Podcast, q Query) ([]models.Podcast, error) {
	compare, err := comparatorFor(q.Sort)
	if err != nil {
		return nil, err
	}

	var out []models.Podcast
	if q.AuthorID != "" {
		out = matching(items, func(p *models.Podcast) bool { return p.AuthorID == q.AuthorID })
	} else {
		out = searchTiers(items, q.Search)
	}

	out = filterFacets(out, toSet(q.Categories), toSet(q.Languages))

	slices.SortStableFunc(out, compare)

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// searchTiers returns the author matches if there are any, otherwise the
// title matches, otherwise the description matches. It never unions tiers.
func searchTiers(items []models.Podcast, term string) []models.Podcast {
	if term == "" {
		return matching(items, func(*models.Podcast) bool { return true })
	}

	tiers := []func(p *models.Podcast) bool{
		func(p *models.Podcast) bool { return strings.Contains(p.AuthorName, term) },
		func(p *models.Podcast) bool { return strings.Contains(p.Title, term) },
		func(p *models.Podcast) bool { return strings.Contains(p.Description, term) },
	}
	for _, match := range tiers {
		if found := matching(items, match); len(found) > 0 {
			return found
		}
	}
	return []models.Podcast{}
}

func filterFacets(items []models.Podcast, categories, languages map[string]struct{}) []models.Podcast {
	if categories == nil && languages == nil {
		return items
	}
	return matching(items, func(p *models.Podcast) bool {
		if categories != nil {
			if _, ok := categories[p.Category]; !ok {
				return false
			}
		}
		if languages != nil {
			if _, ok := languages[p.Language]; !ok {
				return false
			}
		}
		return true
	})
}

// matching copies the items accepted by keep into a fresh slice.
func matching(items []models.Podcast, keep func(p *models.Podcast) bool) []models.Podcast {
	out := make([]models.Podcast, 0, len(items))
	for i := range items {
		if keep(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}

// comparatorFor returns a descending comparison for the sort type.
func comparatorFor(sort SortType) (func(a, b models.Podcast) int, error) {
	switch sort {
	case SortLatest:
		return func(a, b models.Podcast) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		}, nil

	case SortTrending:
		// Product, not sum: a podcast nobody liked has no trend however often it is played.
		return func(a, b models.Podcast) int {
			return cmp.Compare(trendScore(b), trendScore(a))
		}, nil

	case SortPopular:
		return func(a, b models.Podcast) int {
			if c := cmp.Compare(b.LikeCount, a.LikeCount); c != 0 {
				return c
			}
			return cmp.Compare(b.Views, a.Views)
		}, nil

	case SortTopRated:
		return func(a, b models.Podcast) int {
			aRated, bRated := a.RatingCount > 0, b.RatingCount > 0
			if aRated != bRated {
				if aRated {
					return -1
				}
				return 1
			}
			if c := cmp.Compare(b.AverageRating, a.AverageRating); c != 0 {
				return c
			}
			return cmp.Compare(b.RatingCount, a.RatingCount)
		}, nil
	}

	return nil, fmt.Errorf("%w: unknown sort type %q", ErrInvalidArgument, sort)
}

// trendScore is computed in float64; the int64 product of large counters
// overflows.
func trendScore(p models.Podcast) float64 {
	if p.Views <= 0 || p.LikeCount <= 0 {
		return 0
	}
	return float64(p.Views) * float64(p.LikeCount)
}
