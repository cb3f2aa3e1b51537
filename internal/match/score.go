package match

import (
	"regexp"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"playbridge/internal/models"
)

// Acceptance thresholds for the search-based strategies. Policy constants,
// not derived.
const (
	exactAcceptThreshold = 95
	fuzzyAcceptThreshold = 85
)

// compilationKeywords flags album titles that look like re-release
// compilations rather than original releases.
var compilationKeywords = []string{
	"hits",
	"greatest",
	"best of",
	"collection",
	"compilation",
	"anthology",
	"essentials",
	"ultimate",
	"complete",
	"now that's",
	"various artists",
	"soundtrack",
	"tribute",
	"covers",
}

// yearHitsRe matches album titles like "1975 Hits" or "2000: The Hits", with
// the year preceding "hits".
var yearHitsRe = regexp.MustCompile(`\b(19|20)\d{2}\b.*hits`)

// similarity returns the better of the character-level ratio and the
// token-order-insensitive ratio, on a 0-100 scale.
func similarity(a, b string) float64 {
	ratio := fuzzy.Ratio(a, b)
	tokenRatio := fuzzy.TokenSortRatio(a, b)
	return float64(max(ratio, tokenRatio))
}

// albumSimilarity compares album titles case-insensitively. Returns 0 when
// either side is unknown so a missing album never raises confidence.
func albumSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return similarity(strings.ToLower(a), strings.ToLower(b))
}

// hasCompilationKeyword reports whether an album title contains one of the
// compilation markers. The confidence scorer additionally treats a bare "now"
// as a marker ("NOW That's What I Call Music" style titles); the ISRC
// disambiguation scorer does not.
func hasCompilationKeyword(album string, includeNow bool) bool {
	lower := strings.ToLower(album)
	for _, keyword := range compilationKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return includeNow && strings.Contains(lower, "now")
}

// looksLikeYearHits reports whether an album title pairs a 4-digit year with
// a later "hits".
func looksLikeYearHits(album string) bool {
	return yearHitsRe.MatchString(strings.ToLower(album))
}

func durationDiff(a, b models.Track) (int, bool) {
	if a.DurationMS <= 0 || b.DurationMS <= 0 {
		return 0, false
	}
	diff := a.DurationMS - b.DurationMS
	if diff < 0 {
		diff = -diff
	}
	return diff, true
}

// Confidence scores how likely source and candidate denote the same
// recording, on a 0-100 scale. Clamped at 100; penalties can push the result
// negative, which callers reject against the fixed acceptance thresholds.
func Confidence(source, candidate models.Track) float64 {
	sourceTitle := strings.ToLower(CleanTitle(source.Title))
	candidateTitle := strings.ToLower(CleanTitle(candidate.Title))
	sourceArtist := strings.ToLower(CleanArtist(source.Artist))
	candidateArtist := strings.ToLower(CleanArtist(candidate.Artist))

	titleRatio := similarity(sourceTitle, candidateTitle)
	artistRatio := similarity(sourceArtist, candidateArtist)

	score := 0.6*titleRatio + 0.4*artistRatio

	if diff, ok := durationDiff(source, candidate); ok {
		switch {
		case diff <= 2000:
			score += 5
		case diff <= 5000:
			score += 2
		}
	}

	if source.Album != "" && candidate.Album != "" {
		switch albumRatio := albumSimilarity(source.Album, candidate.Album); {
		case albumRatio > 90:
			score += 8
		case albumRatio > 80:
			score += 5
		case albumRatio > 60:
			score += 2
		case albumRatio < 30:
			score -= 3
		}
	}

	// The type-based and keyword-based compilation penalties are independent
	// and may both apply to the same candidate.
	if candidate.AlbumType == models.AlbumTypeCompilation {
		score -= 10
	}
	if hasCompilationKeyword(candidate.Album, true) {
		score -= 12
		if looksLikeYearHits(candidate.Album) {
			score -= 5
		}
	}

	return min(score, 100)
}

// disambiguationScore ranks candidates that share the source's recording code
// but appear on different releases, preferring original albums over singles
// and compilations.
func disambiguationScore(source, candidate models.Track) float64 {
	score := 0.5 * albumSimilarity(source.Album, candidate.Album)

	switch candidate.AlbumType {
	case models.AlbumTypeAlbum:
		score += 20
	case models.AlbumTypeSingle:
		score += 10
	case models.AlbumTypeCompilation:
		score -= 30
	}

	if hasCompilationKeyword(candidate.Album, false) {
		score -= 25
		if looksLikeYearHits(candidate.Album) {
			score -= 15
		}
	}

	if diff, ok := durationDiff(source, candidate); ok {
		switch {
		case diff <= 1000:
			score += 5
		case diff <= 3000:
			score += 2
		}
	}

	return score
}
