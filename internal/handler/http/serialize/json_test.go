package serialize

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedsearch/internal/domain/entity"
)

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestFeeds_FullShape(t *testing.T) {
	// Arrange
	u := mustParseURL(t, "https://example.com/feed.xml")
	f := &entity.Feed{URL: u, Title: "Example", Score: 42, Hubs: []string{"https://hub.example.com"}}

	// Act
	out, err := Feeds([]*entity.Feed{f}, Projection{})

	// Assert
	require.NoError(t, err)
	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "https://example.com/feed.xml", decoded[0]["url"])
	assert.Equal(t, "Example", decoded[0]["title"])
	assert.Equal(t, float64(42), decoded[0]["score"])
	assert.Nil(t, decoded[0]["description"], "empty string fields serialize as null")
	assert.Equal(t, []interface{}{"https://hub.example.com"}, decoded[0]["hubs"])
}

func TestFeeds_EmptyHubs_SerializesAsEmptyArray(t *testing.T) {
	// Arrange
	f := &entity.Feed{URL: mustParseURL(t, "https://example.com/feed.xml")}

	// Act
	out, err := Feeds([]*entity.Feed{f}, Projection{})

	// Assert
	require.NoError(t, err)
	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, []interface{}{}, decoded[0]["hubs"])
}

func TestFeeds_MultipleFeeds_MatchesExpectedShape(t *testing.T) {
	// Arrange: a full multi-field list is easier to verify as a whole-document
	// diff than field-by-field assertions once there's more than one feed.
	feeds := []*entity.Feed{
		{URL: mustParseURL(t, "https://example.com/a.xml"), Title: "A", Score: 10},
		{URL: mustParseURL(t, "https://example.com/b.xml"), Title: "B", Score: 20, Hubs: []string{"https://hub.example.com"}},
	}

	// Act
	out, err := Feeds(feeds, Projection{})

	// Assert
	require.NoError(t, err)
	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))

	baseFields := map[string]interface{}{
		"site_url":         nil,
		"self_url":         nil,
		"description":      nil,
		"site_name":        nil,
		"favicon":          nil,
		"favicon_data_uri": nil,
		"is_push":          false,
		"is_podcast":       false,
		"content_type":     nil,
		"content_length":   float64(0),
		"version":          nil,
		"bozo":             float64(0),
		"velocity":         float64(0),
		"item_count":       float64(0),
		"last_updated":     nil,
		"last_seen":        nil,
	}

	withBase := func(extra map[string]interface{}) map[string]interface{} {
		out := make(map[string]interface{}, len(baseFields)+len(extra))
		for k, v := range baseFields {
			out[k] = v
		}
		for k, v := range extra {
			out[k] = v
		}
		return out
	}

	want := []map[string]interface{}{
		withBase(map[string]interface{}{
			"url":   "https://example.com/a.xml",
			"title": "A",
			"score": float64(10),
			"hubs":  []interface{}{},
		}),
		withBase(map[string]interface{}{
			"url":   "https://example.com/b.xml",
			"title": "B",
			"score": float64(20),
			"hubs":  []interface{}{"https://hub.example.com"},
		}),
	}

	if diff := cmp.Diff(want, decoded); diff != "" {
		t.Errorf("serialized feed list mismatch (-want +got):\n%s", diff)
	}
}

func TestFeed_OnlyProjection(t *testing.T) {
	// Arrange
	f := &entity.Feed{URL: mustParseURL(t, "https://example.com/feed.xml"), Title: "Example"}

	// Act
	obj := Feed(f, Projection{Only: []string{"url"}})
	out, err := json.Marshal(obj)

	// Assert
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Len(t, decoded, 1)
	assert.Equal(t, "https://example.com/feed.xml", decoded["url"])
}

func TestFeed_ExcludeProjection(t *testing.T) {
	// Arrange
	f := &entity.Feed{URL: mustParseURL(t, "https://example.com/feed.xml"), FaviconDataURI: "data:image/png;base64,AAA"}

	// Act
	obj := Feed(f, Projection{Exclude: []string{"favicon_data_uri"}})
	out, err := json.Marshal(obj)

	// Assert
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))
	_, present := decoded["favicon_data_uri"]
	assert.False(t, present)
}

func TestSite_NestedFeeds(t *testing.T) {
	// Arrange
	f := &entity.Feed{URL: mustParseURL(t, "https://example.com/feed.xml"), Title: "Example"}

	// Act
	obj := Site("example.com", f.LastSeen, []*entity.Feed{f}, Projection{})
	out, err := json.Marshal(obj)

	// Assert
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "example.com", decoded["host"])
	feeds, ok := decoded["feeds"].([]interface{})
	require.True(t, ok)
	require.Len(t, feeds, 1)
}

func TestParseProjection_CommaSeparatedAndRepeated(t *testing.T) {
	// Arrange
	values := url.Values{"only": {"url,title"}, "exclude": {"score"}}

	// Act
	p := ParseProjection(values)

	// Assert
	assert.Equal(t, []string{"url", "title"}, p.Only)
	assert.Equal(t, []string{"score"}, p.Exclude)
}
