package match

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"playbridge/internal/models"
	"playbridge/internal/services"
)

// Matcher resolves source tracks against a destination catalog.
//
// Safe for concurrent use: it holds no per-match state and the destination
// service is only invoked through read calls.
type Matcher struct {
	destination services.Service
	logger      *log.Logger
}

// NewMatcher creates a matcher against the given destination service.
func NewMatcher(destination services.Service, logger *log.Logger) *Matcher {
	return &Matcher{destination: destination, logger: logger}
}

// MatchTrack finds the destination catalog's best candidate for a source
// track. Strategies run in order: recording-code lookup, exact search, fuzzy
// search. A track that fails all three yields a no-match result; search
// failures are treated as empty candidate sets and never propagate.
func (m *Matcher) MatchTrack(ctx context.Context, source models.Track) models.MatchResult {
	if source.ISRC != "" {
		if searcher, ok := m.destination.(services.ISRCSearcher); ok {
			if result, ok := m.matchByISRC(ctx, searcher, source); ok {
				return result
			}
		}
	}

	if result, ok := m.matchExact(ctx, source); ok {
		return result
	}

	if result, ok := m.matchFuzzy(ctx, source); ok {
		return result
	}

	m.logger.Debug("no match found", "title", source.Title, "artist", source.Artist)
	return models.NoMatch(source)
}

// matchByISRC looks the track up by its recording code. Multiple candidates
// mean the same recording was released on several albums; the disambiguation
// score picks the release closest to the source.
func (m *Matcher) matchByISRC(ctx context.Context, searcher services.ISRCSearcher, source models.Track) (models.MatchResult, bool) {
	candidates, err := searcher.SearchByISRC(ctx, source.ISRC)
	if err != nil {
		m.logger.Debug("isrc lookup failed", "isrc", source.ISRC, "error", err)
		return models.MatchResult{}, false
	}
	if len(candidates) == 0 {
		return models.MatchResult{}, false
	}

	best := candidates[0]
	if len(candidates) > 1 {
		bestScore := disambiguationScore(source, best)
		for _, candidate := range candidates[1:] {
			if score := disambiguationScore(source, candidate); score > bestScore {
				best, bestScore = candidate, score
			}
		}
	}

	confidence := 95.0
	if albumSimilarity(source.Album, best.Album) > 80 {
		confidence = 100
	}

	return models.NewMatch(source, best, confidence, models.MatchMethodISRC), true
}

// matchExact searches with the literal title and artist and accepts only a
// near-perfect confidence score.
func (m *Matcher) matchExact(ctx context.Context, source models.Track) (models.MatchResult, bool) {
	query := strings.TrimSpace(source.Title + " " + source.Artist)

	candidates, err := m.destination.SearchTrack(ctx, query, 10)
	if err != nil {
		m.logger.Debug("exact search failed", "query", query, "error", err)
		return models.MatchResult{}, false
	}

	best, bestScore, found := bestCandidate(source, candidates)
	if !found || bestScore < exactAcceptThreshold {
		return models.MatchResult{}, false
	}

	return models.NewMatch(source, best, bestScore, models.MatchMethodExact), true
}

// matchFuzzy searches four query variants built from cleaned and raw metadata
// and accepts the global best candidate at a lower threshold.
func (m *Matcher) matchFuzzy(ctx context.Context, source models.Track) (models.MatchResult, bool) {
	cleanedTitle := CleanTitle(source.Title)
	cleanedArtist := CleanArtist(source.Artist)

	variants := []string{
		strings.TrimSpace(cleanedTitle + " " + cleanedArtist),
		strings.TrimSpace(source.Title + " " + cleanedArtist),
		strings.TrimSpace(cleanedTitle + " " + source.Artist),
		strings.TrimSpace(source.Title),
	}

	var (
		best      models.Track
		bestScore float64
		found     bool
	)

	seen := make(map[string]bool, len(variants))
	for _, query := range variants {
		if query == "" || seen[query] {
			continue
		}
		seen[query] = true

		candidates, err := m.destination.SearchTrack(ctx, query, 20)
		if err != nil {
			m.logger.Debug("fuzzy search failed", "query", query, "error", err)
			continue
		}

		if candidate, score, ok := bestCandidate(source, candidates); ok {
			if !found || score > bestScore {
				best, bestScore, found = candidate, score, true
			}
		}
	}

	if !found || bestScore < fuzzyAcceptThreshold {
		return models.MatchResult{}, false
	}

	return models.NewMatch(source, best, bestScore, models.MatchMethodFuzzy), true
}

// bestCandidate scores every candidate with the shared confidence function
// and returns the maximum.
func bestCandidate(source models.Track, candidates []models.Track) (models.Track, float64, bool) {
	var (
		best      models.Track
		bestScore float64
		found     bool
	)

	for _, candidate := range candidates {
		score := Confidence(source, candidate)
		if !found || score > bestScore {
			best, bestScore, found = candidate, score, true
		}
	}

	return best, bestScore, found
}
