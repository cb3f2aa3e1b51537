package match

import (
	"regexp"
	"strings"

	"playbridge/internal/models"
)

var (
	parenRe   = regexp.MustCompile(`\s*\([^)]*\)\s*`)
	bracketRe = regexp.MustCompile(`\s*\[[^\]]*\]\s*`)

	// Trailing version clauses: "Song - Remastered 2011", "Song - Live at
	// Wembley", "Song 2011 Remaster", "Song Acoustic".
	dashVersionRe = regexp.MustCompile(`(?i)\s*-\s*(remaster(?:ed)?|remix|acoustic|live|radio edit|extended|instrumental).*$`)
	yearVersionRe = regexp.MustCompile(`(?i)\s*\b\d{4}\s+remaster(?:ed)?\s*$`)
	bareVersionRe = regexp.MustCompile(`(?i)\s+(remaster(?:ed)?|remix|acoustic|live|radio edit|extended|instrumental)\s*$`)

	featRe       = regexp.MustCompile(`(?i)\s+(feat\.|featuring|ft\.|with)\s+.*$`)
	leadingTheRe = regexp.MustCompile(`(?i)^the\s+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// CleanTitle strips parenthesized and bracketed content and trailing version
// indicators from a track title. Idempotent.
func CleanTitle(title string) string {
	s := parenRe.ReplaceAllString(title, " ")
	s = bracketRe.ReplaceAllString(s, " ")
	s = dashVersionRe.ReplaceAllString(s, "")
	s = yearVersionRe.ReplaceAllString(s, "")
	s = bareVersionRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CleanArtist truncates an artist credit at the first featured-artist marker
// and strips a leading "The". Idempotent.
func CleanArtist(artist string) string {
	s := featRe.ReplaceAllString(artist, "")
	s = leadingTheRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// TrackSignature builds the normalized "title - artist" string used for
// duplicate detection against a destination playlist's existing contents.
func TrackSignature(track models.Track) string {
	title := strings.ToLower(strings.TrimSpace(track.Title))
	artist := strings.ToLower(strings.TrimSpace(track.Artist))
	return title + " - " + artist
}
