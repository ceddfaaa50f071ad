package room

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/sharetube/syncroom/internal/domain"
	connInmemory "github.com/sharetube/syncroom/internal/repository/connection/inmemory"
	roomInmemory "github.com/sharetube/syncroom/internal/repository/room/inmemory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// tick runs one probe tick of connId on the session loop.
func (e *testEnv) tick(t *testing.T, connId string) {
	t.Helper()
	require.NoError(t, e.s.exec(e.ctx, func() {
		if p, ok := e.s.probes[connId]; ok {
			e.s.onProbeTick(context.Background(), p)
		}
	}))
}

func (e *testEnv) probeOf(t *testing.T, connId string) *probe {
	t.Helper()
	var p *probe
	require.NoError(t, e.s.exec(e.ctx, func() {
		p = e.s.probes[connId]
	}))
	return p
}

func withClock(t *testing.T, e *testEnv) *fakeClock {
	t.Helper()
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	require.NoError(t, e.s.exec(e.ctx, func() {
		e.s.now = clock.Now
	}))
	return clock
}

func TestProbeSkipsConnectionsOutsideRoom(t *testing.T) {
	e := newTestEnv(t, time.Hour)
	e.connect(t, "a")

	e.tick(t, "a")
	assert.Empty(t, e.sender.take(MessageTypeLatencyProbe))
}

func TestProbeRoundTrip(t *testing.T) {
	e := newTestEnv(t, time.Hour)
	clock := withClock(t, e)
	e.connect(t, "a", "b")

	_, err := e.s.CreateRoom(e.ctx, "a")
	require.NoError(t, err)
	_, err = e.s.JoinRoom(e.ctx, &JoinRoomParams{ConnId: "b", RoomId: "ROOM01"})
	require.NoError(t, err)
	e.sender.take(MessageTypeUserList)

	e.tick(t, "a")
	probes := e.sender.take(MessageTypeLatencyProbe)
	require.Len(t, probes, 1)
	assert.Equal(t, "a", probes[0].connId)
	assert.Equal(t, LatencyProbePayload{Seq: 1}, probes[0].msg.Payload)

	clock.Advance(120 * time.Millisecond)
	require.NoError(t, e.s.ProbeReply(e.ctx, &ProbeReplyParams{ConnId: "a", Seq: 1}))

	lists := e.sender.take(MessageTypeUserList)
	assert.ElementsMatch(t, []string{"a", "b"}, recipients(lists))
	presences := lists[0].msg.Payload.([]domain.Presence)
	assert.Equal(t, int64(120), presences[0].Ping)
	assert.Equal(t, int64(0), presences[1].Ping)

	// a second reply for the same sample is ignored
	require.NoError(t, e.s.ProbeReply(e.ctx, &ProbeReplyParams{ConnId: "a", Seq: 1}))
	assert.Empty(t, e.sender.take(MessageTypeUserList))
}

func TestProbeReplyBroadcastsRoomAtReplyTime(t *testing.T) {
	e := newTestEnv(t, time.Hour)
	e.connect(t, "a", "b")

	_, err := e.s.CreateRoom(e.ctx, "a")
	require.NoError(t, err)
	_, err = e.s.CreateRoom(e.ctx, "b")
	require.NoError(t, err)

	e.tick(t, "a")
	_, err = e.s.JoinRoom(e.ctx, &JoinRoomParams{ConnId: "a", RoomId: "ROOM02"})
	require.NoError(t, err)
	e.sender.take(MessageTypeUserList)

	require.NoError(t, e.s.ProbeReply(e.ctx, &ProbeReplyParams{ConnId: "a", Seq: 1}))

	lists := e.sender.take(MessageTypeUserList)
	assert.ElementsMatch(t, []string{"b", "a"}, recipients(lists))
	assert.Equal(t, []string{"b", "a"}, userListIds(lists[0]))
}

func TestProbeReplyAfterLeavingUpdatesPingOnly(t *testing.T) {
	e := newTestEnv(t, time.Hour)
	clock := withClock(t, e)
	e.connect(t, "a")

	_, err := e.s.CreateRoom(e.ctx, "a")
	require.NoError(t, err)
	e.tick(t, "a")
	require.NoError(t, e.s.LeaveRoom(e.ctx, "a"))
	e.sender.take(MessageTypeUserList)

	clock.Advance(30 * time.Millisecond)
	require.NoError(t, e.s.ProbeReply(e.ctx, &ProbeReplyParams{ConnId: "a", Seq: 1}))
	assert.Empty(t, e.sender.take(MessageTypeUserList))

	_, err = e.s.CreateRoom(e.ctx, "a")
	require.NoError(t, err)
	lists := e.sender.take(MessageTypeUserList)
	require.Len(t, lists, 1)
	assert.Equal(t, int64(30), lists[0].msg.Payload.([]domain.Presence)[0].Ping)
}

func TestProbeForgetsOldSamples(t *testing.T) {
	e := newTestEnv(t, time.Hour)
	e.connect(t, "a")

	_, err := e.s.CreateRoom(e.ctx, "a")
	require.NoError(t, err)

	for i := 0; i < maxPendingProbes+4; i++ {
		e.tick(t, "a")
	}
	e.sender.take(MessageTypeUserList)

	p := e.probeOf(t, "a")
	require.NoError(t, e.s.exec(e.ctx, func() {
		assert.Len(t, p.pending, maxPendingProbes)
	}))

	require.NoError(t, e.s.ProbeReply(e.ctx, &ProbeReplyParams{ConnId: "a", Seq: 1}))
	assert.Empty(t, e.sender.take(MessageTypeUserList))

	require.NoError(t, e.s.ProbeReply(e.ctx, &ProbeReplyParams{ConnId: "a", Seq: maxPendingProbes + 4}))
	assert.Len(t, e.sender.take(MessageTypeUserList), 1)
}

func TestStaleProbeTickIsNoop(t *testing.T) {
	e := newTestEnv(t, time.Hour)
	e.connect(t, "a")

	_, err := e.s.CreateRoom(e.ctx, "a")
	require.NoError(t, err)

	stale := e.probeOf(t, "a")
	require.NoError(t, e.s.Disconnect(e.ctx, "a"))
	e.connect(t, "a")
	_, err = e.s.CreateRoom(e.ctx, "a")
	require.NoError(t, err)
	e.sender.take(MessageTypeUserList)

	require.NoError(t, e.s.exec(e.ctx, func() {
		e.s.onProbeTick(context.Background(), stale)
	}))
	assert.Empty(t, e.sender.take(MessageTypeLatencyProbe))
	assert.NotSame(t, stale, e.probeOf(t, "a"))
}

func TestProbeTickerRunsConcurrently(t *testing.T) {
	e := newTestEnv(t, 5*time.Millisecond)
	e.connect(t, "a")

	_, err := e.s.CreateRoom(e.ctx, "a")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return e.sender.count("a", MessageTypeLatencyProbe) >= 2
	}, time.Second, 5*time.Millisecond)

	// handlers keep running while the probe ticks
	require.NoError(t, e.s.Sync(e.ctx, &SyncParams{ConnId: "a", Time: 3}))
	assert.Equal(t, 1, e.sender.count("a", MessageTypeSync))
}

func TestNoProbeAfterDisconnect(t *testing.T) {
	e := newTestEnv(t, 5*time.Millisecond)
	e.connect(t, "a")

	_, err := e.s.CreateRoom(e.ctx, "a")
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		return e.sender.count("a", MessageTypeLatencyProbe) >= 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, e.s.Disconnect(e.ctx, "a"))
	sent := e.sender.count("a", MessageTypeLatencyProbe)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, sent, e.sender.count("a", MessageTypeLatencyProbe))
	assert.Nil(t, e.probeOf(t, "a"))
}

func TestRunStopsProbes(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewService(
		roomInmemory.NewRepo(logger),
		connInmemory.NewRepo(&namesInOrder{}, logger),
		&fakeSender{},
		&fakeCodeGenerator{codes: []string{"ROOM01"}},
		logger,
		&Config{ProbePeriod: time.Millisecond},
	)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error)
	go func() {
		stopped <- s.Run(ctx)
	}()

	_, err := s.Connect(context.Background(), "a")
	require.NoError(t, err)

	var p *probe
	require.NoError(t, s.exec(context.Background(), func() {
		p = s.probes["a"]
	}))
	require.NotNil(t, p)

	cancel()
	assert.ErrorIs(t, <-stopped, context.Canceled)

	select {
	case <-p.stop:
	default:
		t.Fatal("probe still running after shutdown")
	}
}
