package discovery

import "fmt"

// SortType names one of the orderings supported by Filter.
type SortType string

const (
	SortLatest   SortType = "latest"
	SortTrending SortType = "trending"
	SortPopular  SortType = "popular"
	SortTopRated SortType = "topRated"
)

// ParseSort validates s. Matching is exact and case-sensitive.
func ParseSort(s string) (SortType, error) {
	switch st := SortType(s); st {
	case SortLatest, SortTrending, SortPopular, SortTopRated:
		return st, nil
	default:
		return "", fmt.Errorf("%w: unknown sort type %q", ErrInvalidArgument, s)
	}
}

// Query holds the criteria for Filter. The zero value of every optional
// field means "no constraint".
type Query struct {
	// Search is matched against author name, then title, then description.
	// Only the first tier with at least one match is kept.
	Search string

	// AuthorID replaces the search tiering when set.
	AuthorID string

	Categories []string
	Languages  []string

	Sort SortType

	// Limit truncates the ordered result when > 0.
	Limit int
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v != "" {
			set[v] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}
