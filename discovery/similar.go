package discovery

import (
	"cmp"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/uttkarsh123-shiv/SoundNest-sub000/models"
)

// Similarity weights. The total is additive; see Score.
const (
	WeightSameAuthor   = 10.0
	WeightSameVoice    = 8.0
	WeightSameCategory = 6.0
	WeightSameLanguage = 6.0
	WeightTitleWord    = 2.0

	MaxDescriptionOverlap = 5
	MaxPopularityBoost    = 3.0
	RatingBoostThreshold  = 4.0
	RecencyWindowDays     = 30.0
	MaxJitter             = 2.0

	DefaultSimilarLimit = 9

	// minTokenLength filters short words such as "the" and "and".
	minTokenLength = 4
)

// RandomSource supplies the jitter term. *rand.Rand from math/rand/v2
// satisfies it.
type RandomSource interface {
	Float64() float64
}

type zeroSource struct{}

func (zeroSource) Float64() float64 { return 0 }

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

var (
	// NoJitter makes scoring deterministic.
	NoJitter RandomSource = zeroSource{}

	// DefaultSource draws from the math/rand/v2 global generator.
	DefaultSource RandomSource = globalSource{}
)

// SimilarOptions configures Similar. Zero values pick the defaults.
type SimilarOptions struct {
	Limit int
	Rand  RandomSource
	Now   time.Time
}

func (o SimilarOptions) withDefaults() SimilarOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultSimilarLimit
	}
	if o.Rand == nil {
		o.Rand = DefaultSource
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	return o
}

// Scored is a candidate with its similarity score.
type Scored struct {
	models.Podcast
	Score float64 `json:"score"`
}

// Similar scores every candidate in pool against ref and returns the
// highest scoring ones, best first. ref itself is skipped even when it is
// present in pool.
func Similar(ref models.Podcast, pool []models.Podcast, opts SimilarOptions) []Scored {
	opts = opts.withDefaults()
	sc := newScorer(ref, opts.Now, opts.Rand)

	out := make([]Scored, 0, len(pool))
	for i := range pool {
		if pool[i].ID == ref.ID {
			continue
		}
		out = append(out, Scored{Podcast: pool[i], Score: sc.score(&pool[i])})
	}

	slices.SortStableFunc(out, func(a, b Scored) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

// FindSimilar looks referenceID up in items, narrows the candidates with the
// category and language facets of q and ranks them with Similar. Search,
// AuthorID, Sort and Limit of q are ignored; the result size is opts.Limit.
func FindSimilar(items []models.Podcast, referenceID string, q Query, opts SimilarOptions) ([]Scored, error) {
	idx := slices.IndexFunc(items, func(p models.Podcast) bool { return p.ID == referenceID })
	if idx < 0 {
		return nil, fmt.Errorf("%w: podcast %q", ErrNotFound, referenceID)
	}

	pool := filterFacets(items, toSet(q.Categories), toSet(q.Languages))
	return Similar(items[idx], pool, opts), nil
}

// Score returns the similarity of candidate to ref, including jitter drawn
// from rnd.
func Score(ref, candidate models.Podcast, now time.Time, rnd RandomSource) float64 {
	if rnd == nil {
		rnd = DefaultSource
	}
	return newScorer(ref, now, rnd).score(&candidate)
}

type scorer struct {
	ref        *models.Podcast
	titleWords map[string]struct{}
	descWords  map[string]struct{}
	now        time.Time
	rnd        RandomSource
}

func newScorer(ref models.Podcast, now time.Time, rnd RandomSource) *scorer {
	return &scorer{
		ref:        &ref,
		titleWords: tokenSet(ref.Title),
		descWords:  tokenSet(ref.Description),
		now:        now,
		rnd:        rnd,
	}
}

func (s *scorer) score(c *models.Podcast) float64 {
	var total float64

	if sameTag(c.AuthorID, s.ref.AuthorID) {
		total += WeightSameAuthor
	}
	if sameTag(c.VoiceType, s.ref.VoiceType) {
		total += WeightSameVoice
	}
	if sameTag(c.Category, s.ref.Category) {
		total += WeightSameCategory
	}
	if sameTag(c.Language, s.ref.Language) {
		total += WeightSameLanguage
	}

	total += WeightTitleWord * float64(overlap(s.titleWords, tokenSet(c.Title)))
	total += float64(min(overlap(s.descWords, tokenSet(c.Description)), MaxDescriptionOverlap))

	if c.Views > 0 {
		total += math.Min(math.Log10(float64(c.Views))*0.5, MaxPopularityBoost)
	}

	if c.AverageRating > RatingBoostThreshold {
		total += (c.AverageRating - RatingBoostThreshold) * 2
	}

	ageDays := math.Max(0, s.now.Sub(c.CreatedAt).Hours()/24)
	if ageDays < RecencyWindowDays {
		total += (RecencyWindowDays - ageDays) / 10
	}

	total += s.rnd.Float64() * MaxJitter
	return total
}

// sameTag treats a missing tag as no signal.
func sameTag(a, b string) bool {
	return a != "" && a == b
}

// tokenSet lower-cases text, splits it on whitespace and keeps words longer
// than three characters.
func tokenSet(text string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) >= minTokenLength {
			set[w] = struct{}{}
		}
	}
	return set
}

func overlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}
