package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	return l.Addr().(*net.TCPAddr).Port
}

func testConfig(t *testing.T) *AppConfig {
	return &AppConfig{
		Host:            "127.0.0.1",
		Port:            freePort(t),
		LogLevel:        "error",
		ProbePeriod:     time.Hour,
		RoomCodeLength:  6,
		SendBuffer:      16,
		ReadLimit:       4096,
		MembershipStore: StoreMemory,
	}
}

func TestValidate(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, cfg.Validate())

	cfg.LogLevel = "loud"
	assert.Error(t, cfg.Validate())

	cfg = testConfig(t)
	cfg.MembershipStore = "disk"
	assert.Error(t, cfg.Validate())

	cfg = testConfig(t)
	cfg.MembershipStore = StoreRedis
	assert.Error(t, cfg.Validate(), "redis store requires redis settings")

	cfg.RedisHost = "localhost"
	cfg.RedisPort = 6379
	cfg.RedisKeyTTL = time.Hour
	assert.NoError(t, cfg.Validate())

	cfg = testConfig(t)
	cfg.ProbePeriod = time.Millisecond
	assert.Error(t, cfg.Validate())
}

// runApp starts the app and waits until it answers health checks.
func runApp(t *testing.T, cfg *AppConfig) (string, context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- Run(ctx, cfg)
	}()

	base := "127.0.0.1:" + strconv.Itoa(cfg.Port)
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + base + "/api/v1/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	return base, cancel, errCh
}

// createRoom opens a connection that creates a room and stays in it until the test ends.
func createRoom(t *testing.T, base string) string {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+base+"/api/v1/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "create-room", "ack": "1"}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg struct {
			Type    string `json:"type"`
			Payload struct {
				RoomID *string `json:"roomID"`
			} `json:"payload"`
		}
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == "ack" {
			require.NotNil(t, msg.Payload.RoomID)
			return *msg.Payload.RoomID
		}
	}
}

func TestRunWithMemoryStore(t *testing.T) {
	cfg := testConfig(t)
	base, cancel, errCh := runApp(t, cfg)

	roomID := createRoom(t, base)
	assert.Len(t, roomID, cfg.RoomCodeLength)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestRunWithRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("syncroom:member:ghost", "OLD001"))

	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	cfg := testConfig(t)
	cfg.MembershipStore = StoreRedis
	cfg.RedisHost = mr.Host()
	cfg.RedisPort = port
	cfg.RedisKeyTTL = time.Hour

	base, cancel, errCh := runApp(t, cfg)
	defer func() {
		cancel()
		<-errCh
	}()

	assert.False(t, mr.Exists("syncroom:member:ghost"), "stale memberships are cleared on start")

	roomID := createRoom(t, base)
	assert.True(t, mr.Exists(fmt.Sprintf("syncroom:room:%s:memberlist", roomID)))
}

func TestRunInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Port = 0

	assert.Error(t, Run(context.Background(), cfg))
}
