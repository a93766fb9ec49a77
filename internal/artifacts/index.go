package artifacts

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ShardIndex is an optional Redis-backed secondary index from prescription id
// to the date shards holding its artifacts. It exists to skip the
// year→month→day scan on lookups; the filesystem remains the source of truth,
// so every consumer must tolerate a cold or stale index.
type ShardIndex struct {
	client *redis.Client
}

// NewShardIndex wraps a redis client. A nil client yields a disabled index;
// all methods are nil-safe no-ops in that case.
func NewShardIndex(client *redis.Client) *ShardIndex {
	if client == nil {
		return nil
	}
	return &ShardIndex{client: client}
}

func (i *ShardIndex) key(prescriptionID string) string {
	return fmt.Sprintf("artifacts:shards:%s", prescriptionID)
}

// Record remembers that the prescription has artifacts under shard
// ("class/yyyy/mm/dd").
func (i *ShardIndex) Record(ctx context.Context, prescriptionID, shard string) error {
	if i == nil {
		return nil
	}
	if err := i.client.SAdd(ctx, i.key(prescriptionID), shard).Err(); err != nil {
		return fmt.Errorf("artifacts: index record: %w", err)
	}
	return nil
}

// Shards returns the known shards for the prescription. An empty result means
// the index is cold, not that no artifacts exist.
func (i *ShardIndex) Shards(ctx context.Context, prescriptionID string) ([]string, error) {
	if i == nil {
		return nil, nil
	}
	shards, err := i.client.SMembers(ctx, i.key(prescriptionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("artifacts: index lookup: %w", err)
	}
	return shards, nil
}

// Forget drops the prescription's index entry.
func (i *ShardIndex) Forget(ctx context.Context, prescriptionID string) error {
	if i == nil {
		return nil
	}
	if err := i.client.Del(ctx, i.key(prescriptionID)).Err(); err != nil {
		return fmt.Errorf("artifacts: index forget: %w", err)
	}
	return nil
}
