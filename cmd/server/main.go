package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sharetube/syncroom/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
	usage        string
}

var (
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 80,
		usage:        "Server port",
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
		usage:        "Server host",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
		usage:        "Logging level",
	}
	probePeriod = configVar[time.Duration]{
		envKey:       "SERVER_PROBE_PERIOD",
		flagKey:      "probe-period",
		defaultValue: 500 * time.Millisecond,
		usage:        "Interval between latency probes of a connection",
	}
	roomCodeLength = configVar[int]{
		envKey:       "SERVER_ROOM_CODE_LENGTH",
		flagKey:      "room-code-length",
		defaultValue: 6,
		usage:        "Length of generated room codes",
	}
	sendBuffer = configVar[int]{
		envKey:       "SERVER_SEND_BUFFER",
		flagKey:      "send-buffer",
		defaultValue: 64,
		usage:        "Outbound messages queued per connection before dropping",
	}
	readLimit = configVar[int64]{
		envKey:       "SERVER_READ_LIMIT",
		flagKey:      "read-limit",
		defaultValue: 4096,
		usage:        "Maximum inbound websocket message size in bytes",
	}
	membershipStore = configVar[string]{
		envKey:       "SERVER_MEMBERSHIP_STORE",
		flagKey:      "membership-store",
		defaultValue: app.StoreMemory,
		usage:        "Room membership store: memory or redis",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
		usage:        "Redis port",
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
		usage:        "Redis host",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
		usage:        "Redis password",
	}
	redisDB = configVar[int]{
		envKey:       "REDIS_DB",
		flagKey:      "redis-db",
		defaultValue: 0,
		usage:        "Redis database",
	}
	redisKeyTTL = configVar[time.Duration]{
		envKey:       "REDIS_KEY_TTL",
		flagKey:      "redis-key-ttl",
		defaultValue: 10 * time.Minute,
		usage:        "Expiration of idle membership keys",
	}
)

func bind[T any](v configVar[T]) {
	viper.BindEnv(v.flagKey, v.envKey)
	viper.SetDefault(v.flagKey, v.defaultValue)
}

func loadAppConfig() *app.AppConfig {
	pflag.Int(port.flagKey, port.defaultValue, port.usage)
	pflag.String(host.flagKey, host.defaultValue, host.usage)
	pflag.String(logLevel.flagKey, logLevel.defaultValue, logLevel.usage)
	pflag.Duration(probePeriod.flagKey, probePeriod.defaultValue, probePeriod.usage)
	pflag.Int(roomCodeLength.flagKey, roomCodeLength.defaultValue, roomCodeLength.usage)
	pflag.Int(sendBuffer.flagKey, sendBuffer.defaultValue, sendBuffer.usage)
	pflag.Int64(readLimit.flagKey, readLimit.defaultValue, readLimit.usage)
	pflag.String(membershipStore.flagKey, membershipStore.defaultValue, membershipStore.usage)
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, redisPort.usage)
	pflag.String(redisHost.flagKey, redisHost.defaultValue, redisHost.usage)
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, redisPassword.usage)
	pflag.Int(redisDB.flagKey, redisDB.defaultValue, redisDB.usage)
	pflag.Duration(redisKeyTTL.flagKey, redisKeyTTL.defaultValue, redisKeyTTL.usage)
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	bind(port)
	bind(host)
	bind(logLevel)
	bind(probePeriod)
	bind(roomCodeLength)
	bind(sendBuffer)
	bind(readLimit)
	bind(membershipStore)
	bind(redisPort)
	bind(redisHost)
	bind(redisPassword)
	bind(redisDB)
	bind(redisKeyTTL)

	config := &app.AppConfig{
		Host:            viper.GetString(host.flagKey),
		Port:            viper.GetInt(port.flagKey),
		LogLevel:        viper.GetString(logLevel.flagKey),
		ProbePeriod:     viper.GetDuration(probePeriod.flagKey),
		RoomCodeLength:  viper.GetInt(roomCodeLength.flagKey),
		SendBuffer:      viper.GetInt(sendBuffer.flagKey),
		ReadLimit:       viper.GetInt64(readLimit.flagKey),
		MembershipStore: viper.GetString(membershipStore.flagKey),
		RedisPort:       viper.GetInt(redisPort.flagKey),
		RedisHost:       viper.GetString(redisHost.flagKey),
		RedisPassword:   viper.GetString(redisPassword.flagKey),
		RedisDB:         viper.GetInt(redisDB.flagKey),
		RedisKeyTTL:     viper.GetDuration(redisKeyTTL.flagKey),
	}

	return config
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	if err := app.Run(ctx, appConfig); err != nil {
		log.Fatal(err)
	}
}
