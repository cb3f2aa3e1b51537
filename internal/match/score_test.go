package match

import (
	"testing"

	"playbridge/internal/models"
)

func TestConfidence(t *testing.T) {
	t.Run("Identical Tracks Score 100", func(t *testing.T) {
		source := models.Track{Title: "Bohemian Rhapsody", Artist: "Queen", Album: "A Night at the Opera", DurationMS: 354320}
		candidate := models.Track{Title: "Bohemian Rhapsody", Artist: "Queen", Album: "A Night at the Opera", DurationMS: 354320}

		if got := Confidence(source, candidate); got != 100 {
			t.Errorf("expected 100 for identical tracks (clamped), got %f", got)
		}
	})

	t.Run("Version Suffix Cleaned Before Comparison", func(t *testing.T) {
		source := models.Track{Title: "Bohemian Rhapsody - Remastered 2011", Artist: "Queen"}
		candidate := models.Track{Title: "Bohemian Rhapsody", Artist: "Queen"}

		if got := Confidence(source, candidate); got < exactAcceptThreshold {
			t.Errorf("expected cleaned titles to score at least %d, got %f", exactAcceptThreshold, got)
		}
	})

	t.Run("Monotonic In Title Similarity", func(t *testing.T) {
		source := models.Track{Title: "Bohemian Rhapsody", Artist: "Queen"}
		exact := models.Track{Title: "Bohemian Rhapsody", Artist: "Queen"}
		near := models.Track{Title: "Bohemian Rapsody", Artist: "Queen"}
		far := models.Track{Title: "Another One Bites the Dust", Artist: "Queen"}

		exactScore := Confidence(source, exact)
		nearScore := Confidence(source, near)
		farScore := Confidence(source, far)

		if exactScore < nearScore || nearScore < farScore {
			t.Errorf("expected non-decreasing confidence with similarity: exact=%f near=%f far=%f",
				exactScore, nearScore, farScore)
		}
	})

	t.Run("Duration Bonus", func(t *testing.T) {
		source := models.Track{Title: "Song", Artist: "Artist", DurationMS: 200000}
		close := models.Track{Title: "Different Tune", Artist: "Artist", DurationMS: 201000}
		near := models.Track{Title: "Different Tune", Artist: "Artist", DurationMS: 204000}
		farOff := models.Track{Title: "Different Tune", Artist: "Artist", DurationMS: 250000}

		closeScore := Confidence(source, close)
		nearScore := Confidence(source, near)
		farScore := Confidence(source, farOff)

		if closeScore-farScore != 5 {
			t.Errorf("expected +5 bonus within 2000ms, got delta %f", closeScore-farScore)
		}
		if nearScore-farScore != 2 {
			t.Errorf("expected +2 bonus within 5000ms, got delta %f", nearScore-farScore)
		}
	})

	t.Run("Graduated Album Adjustment", func(t *testing.T) {
		source := models.Track{Title: "Song", Artist: "Artist", Album: "A Night at the Opera"}
		base := Confidence(source, models.Track{Title: "Other", Artist: "Artist"})

		same := Confidence(source, models.Track{Title: "Other", Artist: "Artist", Album: "A Night at the Opera"})
		unrelated := Confidence(source, models.Track{Title: "Other", Artist: "Artist", Album: "Zzyzx"})

		if same-base != 8 {
			t.Errorf("expected +8 for near-identical album, got delta %f", same-base)
		}
		if base-unrelated != 3 {
			t.Errorf("expected -3 for unrelated album, got delta %f", base-unrelated)
		}
	})

	t.Run("Compilation Penalties Stack", func(t *testing.T) {
		source := models.Track{Title: "Song", Artist: "Artist"}

		typeOnly := Confidence(source, models.Track{
			Title: "Song", Artist: "Artist",
			AlbumType: models.AlbumTypeCompilation,
		})
		keywordOnly := Confidence(source, models.Track{
			Title: "Song", Artist: "Artist",
			Album: "Greatest Hits",
		})
		both := Confidence(source, models.Track{
			Title: "Song", Artist: "Artist",
			Album: "Greatest Hits", AlbumType: models.AlbumTypeCompilation,
		})
		neither := Confidence(source, models.Track{Title: "Song", Artist: "Artist"})

		if neither-typeOnly != 10 {
			t.Errorf("expected -10 type penalty, got delta %f", neither-typeOnly)
		}
		if neither-keywordOnly != 12 {
			t.Errorf("expected -12 keyword penalty, got delta %f", neither-keywordOnly)
		}
		if neither-both != 22 {
			t.Errorf("expected both penalties to stack to -22, got delta %f", neither-both)
		}
	})

	t.Run("Year Hits Penalty", func(t *testing.T) {
		source := models.Track{Title: "Song", Artist: "Artist"}

		keyword := Confidence(source, models.Track{Title: "Song", Artist: "Artist", Album: "Greatest Hits"})
		yearHits := Confidence(source, models.Track{Title: "Song", Artist: "Artist", Album: "1985 Hits"})

		if keyword-yearHits != 5 {
			t.Errorf("expected extra -5 for year-plus-hits album, got delta %f", keyword-yearHits)
		}

		// The year has to come before "hits"; a trailing reissue year is not
		// the year-hits pattern.
		trailingYear := Confidence(source, models.Track{Title: "Song", Artist: "Artist", Album: "Greatest Hits 1975"})
		if keyword-trailingYear != 0 {
			t.Errorf("expected no extra penalty for a trailing year, got delta %f", keyword-trailingYear)
		}
	})

	t.Run("Can Go Negative", func(t *testing.T) {
		source := models.Track{Title: "Obscure B-Side", Artist: "Unknown Band"}
		candidate := models.Track{
			Title: "Completely Different", Artist: "Someone Else",
			Album: "Ultimate Greatest Hits 1999", AlbumType: models.AlbumTypeCompilation,
		}

		// No floor is enforced; callers reject against the thresholds.
		if got := Confidence(source, candidate); got >= fuzzyAcceptThreshold {
			t.Errorf("expected heavily penalized candidate to be rejectable, got %f", got)
		}
	})
}

func TestDisambiguationScore(t *testing.T) {
	source := models.Track{
		Title: "Bohemian Rhapsody", Artist: "Queen",
		Album: "A Night at the Opera", DurationMS: 354320, ISRC: "GBUM71029604",
	}

	t.Run("Prefers Original Album Over Compilation", func(t *testing.T) {
		album := models.Track{
			Title: "Bohemian Rhapsody", Artist: "Queen",
			Album: "A Night at the Opera", AlbumType: models.AlbumTypeAlbum, DurationMS: 354320,
		}
		compilation := models.Track{
			Title: "Bohemian Rhapsody", Artist: "Queen",
			Album: "Greatest Hits", AlbumType: models.AlbumTypeCompilation, DurationMS: 354320,
		}

		if disambiguationScore(source, album) <= disambiguationScore(source, compilation) {
			t.Error("expected the original album release to outscore the compilation")
		}
	})

	t.Run("Album Outscores Single", func(t *testing.T) {
		album := models.Track{Album: "A Night at the Opera", AlbumType: models.AlbumTypeAlbum}
		single := models.Track{Album: "A Night at the Opera", AlbumType: models.AlbumTypeSingle}

		if disambiguationScore(source, album)-disambiguationScore(source, single) != 10 {
			t.Error("expected album type bonus of +20 vs +10 for single")
		}
	})

	t.Run("Duration Tiers", func(t *testing.T) {
		tight := models.Track{Album: "A Night at the Opera", DurationMS: 354900}
		loose := models.Track{Album: "A Night at the Opera", DurationMS: 357000}
		off := models.Track{Album: "A Night at the Opera", DurationMS: 360000}

		tightScore := disambiguationScore(source, tight)
		looseScore := disambiguationScore(source, loose)
		offScore := disambiguationScore(source, off)

		if tightScore-offScore != 5 {
			t.Errorf("expected +5 within 1000ms, got delta %f", tightScore-offScore)
		}
		if looseScore-offScore != 2 {
			t.Errorf("expected +2 within 3000ms, got delta %f", looseScore-offScore)
		}
	})
}

func TestCompilationKeywords(t *testing.T) {
	tests := []struct {
		album      string
		includeNow bool
		want       bool
	}{
		{"Greatest Hits", false, true},
		{"The Best of Queen", false, true},
		{"NOW That's What I Call Music! 42", false, true},
		{"A Night at the Opera", false, false},
		{"Now and Then", false, false},
		{"Now and Then", true, true},
		{"Guardians of the Galaxy Soundtrack", false, true},
		{"Anthology 1", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.album, func(t *testing.T) {
			if got := hasCompilationKeyword(tt.album, tt.includeNow); got != tt.want {
				t.Errorf("hasCompilationKeyword(%q, %v) = %v, want %v", tt.album, tt.includeNow, got, tt.want)
			}
		})
	}

	t.Run("Year Hits Pattern", func(t *testing.T) {
		if !looksLikeYearHits("1985 Hits") {
			t.Error("expected year-before-hits to match")
		}
		if !looksLikeYearHits("2005: The Year's Biggest Hits") {
			t.Error("expected year anywhere before hits to match")
		}
		if looksLikeYearHits("Greatest Hits") {
			t.Error("expected keyword-only album not to match the year pattern")
		}
		if looksLikeYearHits("Hits of 1985") {
			t.Error("expected a year after hits not to match")
		}
		if looksLikeYearHits("Greatest Hits 1975") {
			t.Error("expected a trailing reissue year not to match")
		}
	})
}
