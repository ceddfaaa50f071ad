package app

import (
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type AppConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	LogLevel        string        `json:"log_level"`
	ProbePeriod     time.Duration `json:"probe_period"`
	RoomCodeLength  int           `json:"room_code_length"`
	SendBuffer      int           `json:"send_buffer"`
	ReadLimit       int64         `json:"read_limit"`
	MembershipStore string        `json:"membership_store"`
	RedisHost       string        `json:"redis_host"`
	RedisPort       int           `json:"redis_port"`
	RedisPassword   string        `json:"-"`
	RedisDB         int           `json:"redis_db"`
	RedisKeyTTL     time.Duration `json:"redis_key_ttl"`
}

var logLevelRule = validation.By(func(value any) error {
	var level slog.Level
	return level.UnmarshalText([]byte(strings.ToUpper(value.(string))))
})

func (cfg *AppConfig) Validate() error {
	useRedis := cfg.MembershipStore == StoreRedis

	return validation.ValidateStruct(cfg,
		validation.Field(&cfg.Host, validation.Required, is.Host),
		validation.Field(&cfg.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&cfg.LogLevel, validation.Required, logLevelRule),
		validation.Field(&cfg.ProbePeriod, validation.Required, validation.Min(10*time.Millisecond)),
		validation.Field(&cfg.RoomCodeLength, validation.Required, validation.Min(4), validation.Max(32)),
		validation.Field(&cfg.SendBuffer, validation.Required, validation.Min(1)),
		validation.Field(&cfg.ReadLimit, validation.Required, validation.Min(int64(512))),
		validation.Field(&cfg.MembershipStore, validation.Required, validation.In(StoreMemory, StoreRedis)),
		validation.Field(&cfg.RedisHost, validation.When(useRedis, validation.Required, is.Host)),
		validation.Field(&cfg.RedisPort, validation.When(useRedis, validation.Required, validation.Min(1), validation.Max(65535))),
		validation.Field(&cfg.RedisDB, validation.Min(0)),
		validation.Field(&cfg.RedisKeyTTL, validation.When(useRedis, validation.Required, validation.Min(time.Second))),
	)
}
