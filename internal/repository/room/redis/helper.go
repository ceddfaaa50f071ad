package redis

import (
	"context"
	"strconv"
)

func (r repo) ttlMillis() string {
	return strconv.FormatInt(r.expireDuration.Milliseconds(), 10)
}

// scanKeys collects every key matching pattern.
func (r repo) scanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := r.rc.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return nil, err
	}

	return keys, nil
}

// Clear removes every key owned by the repository.
func (r repo) Clear(ctx context.Context) error {
	r.logger.DebugContext(ctx, "called", "prefix", r.prefix)
	keys, err := r.scanKeys(ctx, r.prefix+"*")
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	if len(keys) == 0 {
		return nil
	}

	if err := r.rc.Del(ctx, keys...).Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	r.logger.DebugContext(ctx, "returned", "deleted", len(keys))
	return nil
}
