package scorestore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Redis stores the score as a plain string value under one key
type Redis struct {
	rdb *redis.Client
	key string
}

// NewRedis returns a store using key on rdb
func NewRedis(rdb *redis.Client, key string) *Redis {
	return &Redis{rdb: rdb, key: key}
}

// Load implements contracts.ScoreStore
func (r *Redis) Load(ctx context.Context) (int, bool, error) {
	val, err := r.rdb.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get %s: %w", r.key, err)
	}

	score, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, fmt.Errorf("invalid score %q under %s: %w", val, r.key, err)
	}
	return score, true, nil
}

// raiseScript sets KEYS[1] to ARGV[1] only when it is higher than the
// stored value. Returns {best, raised}.
var raiseScript = redis.NewScript(`
local score = tonumber(ARGV[1])
local current = redis.call('GET', KEYS[1])
if current and tonumber(current) >= score then
	return {tonumber(current), 0}
end
redis.call('SET', KEYS[1], ARGV[1])
return {score, 1}
`)

// Save implements contracts.ScoreStore. The compare and the write run as one
// script, so concurrent writers can only raise the key. The key never expires.
func (r *Redis) Save(ctx context.Context, score int) (int, bool, error) {
	res, err := raiseScript.Run(ctx, r.rdb, []string{r.key}, score).Int64Slice()
	if err != nil {
		return 0, false, fmt.Errorf("failed to raise %s: %w", r.key, err)
	}
	if len(res) != 2 {
		return 0, false, fmt.Errorf("unexpected reply raising %s: %v", r.key, res)
	}
	return int(res[0]), res[1] == 1, nil
}
