package core

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const viewKeyPrefix = "post_views:"

// NewRedisClient returns a configured go-redis client from URL (e.g., redis://localhost:6379/0).
func NewRedisClient(redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, errors.New("empty redis url")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return client, nil
}

// PostViews tracks per-post view counts in Redis.
type PostViews struct {
	client *redis.Client
}

func NewPostViews(client *redis.Client) *PostViews {
	return &PostViews{client: client}
}

// Hit increments the view count for a post and returns the new total.
func (v *PostViews) Hit(ctx context.Context, postID int64) (int64, error) {
	return v.client.Incr(ctx, viewKey(postID)).Result()
}

// Count returns the view count for a single post; unseen posts count as zero.
func (v *PostViews) Count(ctx context.Context, postID int64) (int64, error) {
	n, err := v.client.Get(ctx, viewKey(postID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Counts returns view counts for the given posts in order. Missing keys map to zero.
func (v *PostViews) Counts(ctx context.Context, postIDs []int64) ([]int64, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	keys := make([]string, len(postIDs))
	for i, id := range postIDs {
		keys[i] = viewKey(id)
	}
	vals, err := v.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(postIDs))
	for i, raw := range vals {
		s, ok := raw.(string)
		if !ok {
			continue
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			out[i] = n
		}
	}
	return out, nil
}

func viewKey(postID int64) string {
	return viewKeyPrefix + strconv.FormatInt(postID, 10)
}
