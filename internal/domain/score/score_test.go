package score_test

import (
	"net/url"
	"testing"

	"feedsearch/internal/domain/entity"
	"feedsearch/internal/domain/score"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}

func TestScoreHTTPSBonus(t *testing.T) {
	t.Parallel()
	f := &entity.Feed{URL: mustParse(t, "https://example.com/feed.xml"), Description: "d"}
	score.Score(f, "example.com")
	// https +10, plus every matching keyword bonus: .xml +6 and feed +4
	if f.Score != 20 {
		t.Errorf("Score = %d, want 20", f.Score)
	}
}

func TestScoreHostMismatchPenalty(t *testing.T) {
	t.Parallel()
	f := &entity.Feed{URL: mustParse(t, "http://other.com/feed"), Description: "d"}
	score.Score(f, "example.com")
	if f.Score >= 0 {
		t.Errorf("Score = %d, want negative (host mismatch penalty)", f.Score)
	}
}

func TestScoreBozoPenalty(t *testing.T) {
	t.Parallel()
	clean := &entity.Feed{URL: mustParse(t, "http://example.com/feed.xml"), Description: "d"}
	bozo := &entity.Feed{URL: mustParse(t, "http://example.com/feed.xml"), Description: "d", Bozo: 1}
	score.Score(clean, "example.com")
	score.Score(bozo, "example.com")
	if clean.Score-bozo.Score != 20 {
		t.Errorf("bozo penalty = %d, want 20", clean.Score-bozo.Score)
	}
}

func TestScoreEmptyDescriptionPenalty(t *testing.T) {
	t.Parallel()
	withDesc := &entity.Feed{URL: mustParse(t, "http://example.com/feed.xml"), Description: "d"}
	noDesc := &entity.Feed{URL: mustParse(t, "http://example.com/feed.xml")}
	score.Score(withDesc, "example.com")
	score.Score(noDesc, "example.com")
	if withDesc.Score-noDesc.Score != 10 {
		t.Errorf("empty-description penalty = %d, want 10", withDesc.Score-noDesc.Score)
	}
}

func TestScoreCommentsPenaltyExcludesVelocityBonus(t *testing.T) {
	t.Parallel()
	f := &entity.Feed{URL: mustParse(t, "http://example.com/comments.xml"), Description: "d", Velocity: 5.9}
	score.Score(f, "example.com")
	// comments: -15, no velocity bonus applied; .xml keyword +6; https +0 (http)
	if f.Score != -9 {
		t.Errorf("Score = %d, want -9", f.Score)
	}
}

func TestScoreVelocityBonusWhenNoCommentsMatch(t *testing.T) {
	t.Parallel()
	f := &entity.Feed{URL: mustParse(t, "http://example.com/feed.xml"), Description: "d", Velocity: 5.9}
	score.Score(f, "example.com")
	// velocity floor(5.9) = 5, plus every matching keyword bonus: .xml +6 and feed +4
	if f.Score != 15 {
		t.Errorf("Score = %d, want 15", f.Score)
	}
}

func TestScoreIndexBonus(t *testing.T) {
	t.Parallel()
	f := &entity.Feed{URL: mustParse(t, "http://example.com/index.rss"), Description: "d"}
	score.Score(f, "example.com")
	// index +30, rss keyword +8
	if f.Score != 38 {
		t.Errorf("Score = %d, want 38", f.Score)
	}
}

func TestScorePathSegmentPenalty(t *testing.T) {
	t.Parallel()
	// yarl's URL.parts includes the leading "/" root element, so a path
	// of n segments counts as n+1 parts; the penalty kicks in once that
	// exceeds 2, i.e. from the second real segment on.
	oneSeg := &entity.Feed{URL: mustParse(t, "http://example.com/a"), Description: "d"}
	twoSeg := &entity.Feed{URL: mustParse(t, "http://example.com/a/b"), Description: "d"}
	threeSeg := &entity.Feed{URL: mustParse(t, "http://example.com/a/b/c"), Description: "d"}
	score.Score(oneSeg, "example.com")
	score.Score(twoSeg, "example.com")
	score.Score(threeSeg, "example.com")
	if oneSeg.Score-twoSeg.Score != 2 {
		t.Errorf("two-segment penalty = %d, want 2", oneSeg.Score-twoSeg.Score)
	}
	if oneSeg.Score-threeSeg.Score != 4 {
		t.Errorf("three-segment penalty = %d, want 4", oneSeg.Score-threeSeg.Score)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	t.Parallel()
	f1 := &entity.Feed{URL: mustParse(t, "https://example.com/atom.xml"), Description: "d", IsPush: true, Velocity: 2}
	f2 := &entity.Feed{URL: mustParse(t, "https://example.com/atom.xml"), Description: "d", IsPush: true, Velocity: 2}
	score.Score(f1, "example.com")
	score.Score(f2, "example.com")
	if f1.Score != f2.Score {
		t.Errorf("Score not deterministic: %d != %d", f1.Score, f2.Score)
	}
}

func TestScoreNilFeedNoPanic(t *testing.T) {
	t.Parallel()
	score.Score(nil, "example.com")
}
