package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopCacheAlwaysMisses(t *testing.T) {
	var c Cache = NopCache{}
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, CategoriesKey, []string{"x"}, time.Minute))
	var out []string
	hit, err := c.GetJSON(ctx, CategoriesKey, &out)
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, c.DeletePrefix(ctx, PopularPrefix))
}

func TestPopularKey(t *testing.T) {
	assert.Equal(t, "books:popular:10", PopularKey(10))
}

func TestNewRedisClient_BadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not-a-url")
	assert.Error(t, err)
}

// Runs against a real redis when TEST_REDIS_URL is set.
func TestRedisCacheRoundTrip(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	client, err := NewRedisClient(ctx, url)
	require.NoError(t, err)
	defer client.Close()

	c := NewRedisCache(client)
	type entry struct {
		Title string `json:"title"`
	}

	require.NoError(t, c.SetJSON(ctx, PopularKey(5), []entry{{Title: "Dune"}}, time.Minute))
	require.NoError(t, c.SetJSON(ctx, PopularKey(10), []entry{{Title: "Emma"}}, time.Minute))

	var got []entry
	hit, err := c.GetJSON(ctx, PopularKey(5), &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "Dune", got[0].Title)

	require.NoError(t, c.DeletePrefix(ctx, PopularPrefix))
	hit, err = c.GetJSON(ctx, PopularKey(10), &got)
	require.NoError(t, err)
	assert.False(t, hit)
}
