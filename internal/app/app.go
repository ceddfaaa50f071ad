package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sharetube/syncroom/internal/controller"
	connInmemory "github.com/sharetube/syncroom/internal/repository/connection/inmemory"
	roomrepo "github.com/sharetube/syncroom/internal/repository/room"
	roomInmemory "github.com/sharetube/syncroom/internal/repository/room/inmemory"
	roomRedis "github.com/sharetube/syncroom/internal/repository/room/redis"
	wssender "github.com/sharetube/syncroom/internal/repository/ws-sender"
	"github.com/sharetube/syncroom/internal/service/room"
	"github.com/sharetube/syncroom/pkg/ctxlogger"
	"github.com/sharetube/syncroom/pkg/namegen"
	"github.com/sharetube/syncroom/pkg/redisclient"
	"github.com/sharetube/syncroom/pkg/roomcode"
)

const shutdownTimeout = 30 * time.Second

type iRoomRepo interface {
	AddMember(context.Context, *roomrepo.AddMemberParams) error
	RemoveMember(ctx context.Context, memberId string) (string, error)
	GetMemberRoomId(ctx context.Context, memberId string) (string, error)
	GetMemberIds(ctx context.Context, roomId string) ([]string, error)
	GetRoomsCount(context.Context) (int, error)
}

func newLogger(cfg *AppConfig) (*slog.Logger, error) {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		return nil, err
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	return slog.New(&h), nil
}

// newRoomRepo builds the membership store. The returned cleanup func must be called on exit.
func newRoomRepo(ctx context.Context, cfg *AppConfig, logger *slog.Logger) (iRoomRepo, func(), error) {
	if cfg.MembershipStore != StoreRedis {
		return roomInmemory.NewRepo(logger), func() {}, nil
	}

	rc, err := redisclient.NewRedisClient(&redisclient.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create redis client: %w", err)
	}

	repo := roomRedis.NewRepo(rc, cfg.RedisKeyTTL, logger)
	if err := repo.Clear(ctx); err != nil {
		rc.Close()
		return nil, nil, fmt.Errorf("failed to clear stale memberships: %w", err)
	}

	return repo, func() { rc.Close() }, nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	roomRepo, closeRoomRepo, err := newRoomRepo(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRoomRepo()

	codeGenerator, err := roomcode.New(cfg.RoomCodeLength, roomcode.DefaultAlphabet)
	if err != nil {
		return fmt.Errorf("failed to create room code generator: %w", err)
	}

	senderRepo := wssender.NewRepo(logger)
	roomService := room.NewService(
		roomRepo,
		connInmemory.NewRepo(namegen.New(), logger),
		senderRepo,
		codeGenerator,
		logger,
		&room.Config{ProbePeriod: cfg.ProbePeriod},
	)

	serviceCtx, stopService := context.WithCancel(context.Background())
	serviceDone := make(chan struct{})
	go func() {
		defer close(serviceDone)
		roomService.Run(serviceCtx)
	}()
	defer func() {
		stopService()
		<-serviceDone
	}()

	controller := controller.NewController(roomService, senderRepo, logger, &controller.Config{
		SendBuffer: cfg.SendBuffer,
		ReadLimit:  cfg.ReadLimit,
	})

	// websocket sessions outlive Shutdown, so they hang off a context cancelled on shutdown
	connsCtx, closeConns := context.WithCancel(context.Background())
	defer closeConns()

	server := &http.Server{
		Addr:    net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.Port)),
		Handler: controller.GetMux(),
		BaseContext: func(net.Listener) context.Context {
			return connsCtx
		},
	}
	server.RegisterOnShutdown(closeConns)

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)
	defer serverStopCtx()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sig)

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		select {
		case <-sig:
		case <-serverCtx.Done():
		}

		shutdownCtx, c := context.WithTimeout(context.Background(), shutdownTimeout)
		defer c()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.ErrorContext(shutdownCtx, "graceful shutdown failed", "error", err)
		}
	}()

	logger.InfoContext(ctx, "starting server", "address", server.Addr, "membership_store", cfg.MembershipStore)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-shutdownDone
	logger.InfoContext(ctx, "server stopped")

	return nil
}
