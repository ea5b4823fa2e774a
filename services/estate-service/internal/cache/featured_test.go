package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vidyaa00/REMS/services/estate-service/internal/model"
)

func TestNoop(t *testing.T) {
	var c FeaturedCache = Noop{}

	require.NoError(t, c.Set(context.Background(), []*model.PropertyDetail{{Property: &model.Property{}}}))

	props, ok, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, props)
	assert.NoError(t, c.Invalidate(context.Background()))
}

func TestNewRedisClient_InvalidURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "http://not-redis")
	assert.Error(t, err)
}

func TestRedisFeatured(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}

	ctx := context.Background()
	client, err := NewRedisClient(ctx, url)
	require.NoError(t, err)
	defer client.Close()

	c := NewRedisFeatured(client, time.Minute)
	require.NoError(t, c.Invalidate(ctx))

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	agent := &model.Contact{ID: bson.NewObjectID(), Name: "Agent", Email: "agent@example.com"}
	in := []*model.PropertyDetail{{
		Property: &model.Property{ID: bson.NewObjectID(), Title: "Villa", IsFeatured: true, Images: []string{}},
		Agent:    agent,
	}}
	require.NoError(t, c.Set(ctx, in))

	out, ok, err := c.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, out, 1)
	assert.Equal(t, "Villa", out[0].Title)
	assert.Equal(t, agent, out[0].Agent)

	require.NoError(t, c.Invalidate(ctx))
	_, ok, err = c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
