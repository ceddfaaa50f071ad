package redis

import (
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultKeyPrefix = "syncroom:"

type repo struct {
	rc                 *redis.Client
	prefix             string
	expireDuration     time.Duration
	addMemberScript    *redis.Script
	removeMemberScript *redis.Script
	touchMemberScript  *redis.Script
	logger             *slog.Logger
}

func NewRepo(rc *redis.Client, expireDuration time.Duration, logger *slog.Logger) *repo {
	return &repo{
		rc:             rc,
		prefix:         DefaultKeyPrefix,
		expireDuration: expireDuration,
		// KEYS: member key, member list key. ARGV: member id, room id, ttl in ms.
		addMemberScript: redis.NewScript(`
			if redis.call('EXISTS', KEYS[1]) == 1 then
				return 0
			end
			local maxScore = redis.call('ZREVRANGE', KEYS[2], 0, 0, 'WITHSCORES')
			local nextScore = 1
			if #maxScore > 0 then
				nextScore = tonumber(maxScore[2]) + 1
			end
			redis.call('ZADD', KEYS[2], nextScore, ARGV[1])
			redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
			redis.call('PEXPIRE', KEYS[2], ARGV[3])
			return 1
		`),
		// KEYS: member key. ARGV: member list key prefix, member list key suffix, member id.
		removeMemberScript: redis.NewScript(`
			local roomId = redis.call('GET', KEYS[1])
			if not roomId then
				return false
			end
			redis.call('DEL', KEYS[1])
			redis.call('ZREM', ARGV[1] .. roomId .. ARGV[2], ARGV[3])
			return roomId
		`),
		// KEYS: member key. ARGV: member list key prefix, member list key suffix, ttl in ms.
		// Both keys of a membership expire together.
		touchMemberScript: redis.NewScript(`
			local roomId = redis.call('GET', KEYS[1])
			if not roomId then
				return false
			end
			redis.call('PEXPIRE', KEYS[1], ARGV[3])
			redis.call('PEXPIRE', ARGV[1] .. roomId .. ARGV[2], ARGV[3])
			return roomId
		`),
		logger: logger,
	}
}
