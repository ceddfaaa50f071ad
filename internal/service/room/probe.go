package room

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sharetube/syncroom/internal/domain"
	"github.com/sharetube/syncroom/pkg/ctxlogger"
)

// Outstanding samples remembered per connection; replies to older ones are ignored.
const maxPendingProbes = 16

type probe struct {
	connId  string
	seq     int64
	pending map[int64]time.Time
	stop    chan struct{}
	once    sync.Once
}

func newProbe(connId string) *probe {
	return &probe{
		connId:  connId,
		pending: make(map[int64]time.Time),
		stop:    make(chan struct{}),
	}
}

func (p *probe) close() {
	p.once.Do(func() {
		close(p.stop)
	})
}

func (s *service) startProbe(connId string) {
	if old, ok := s.probes[connId]; ok {
		old.close()
	}

	p := newProbe(connId)
	s.probes[connId] = p
	go s.runProbe(p)
}

func (s *service) stopProbe(connId string) {
	p, ok := s.probes[connId]
	if !ok {
		return
	}

	p.close()
	delete(s.probes, connId)
}

// runProbe posts a tick to the session loop every probe period until the probe is stopped.
func (s *service) runProbe(p *probe) {
	ticker := time.NewTicker(s.probePeriod)
	defer ticker.Stop()

	tick := func(ctx context.Context) {
		s.onProbeTick(ctxlogger.AppendCtx(ctx, slog.String("conn_id", p.connId)), p)
	}

	for {
		select {
		case <-p.stop:
			return
		case <-s.done:
			return
		case <-ticker.C:
			select {
			case s.events <- tick:
			case <-p.stop:
				return
			case <-s.done:
				return
			}
		}
	}
}

func (s *service) onProbeTick(ctx context.Context, p *probe) {
	if s.probes[p.connId] != p {
		return
	}

	roomId, err := s.currentRoom(ctx, p.connId)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to get current room", "error", err)
		return
	}

	if roomId == "" {
		return
	}

	p.seq++
	p.pending[p.seq] = s.now()
	delete(p.pending, p.seq-maxPendingProbes)

	s.send(ctx, p.connId, &Message{
		Type:    MessageTypeLatencyProbe,
		Payload: LatencyProbePayload{Seq: p.seq},
	})
}

type ProbeReplyParams struct {
	ConnId string
	Seq    int64
}

// ProbeReply completes a latency sample. Unknown or forgotten sequence numbers are ignored.
func (s *service) ProbeReply(ctx context.Context, params *ProbeReplyParams) error {
	return s.exec(ctx, func() {
		p, ok := s.probes[params.ConnId]
		if !ok {
			return
		}

		start, ok := p.pending[params.Seq]
		if !ok {
			s.logger.DebugContext(ctx, "unknown probe reply", "conn_id", params.ConnId, "seq", params.Seq)
			return
		}
		delete(p.pending, params.Seq)

		ping := s.now().Sub(start).Milliseconds()
		if err := s.connRepo.Update(params.ConnId, &domain.PresencePatch{Ping: &ping}); err != nil {
			s.logger.WarnContext(ctx, "failed to update ping", "conn_id", params.ConnId, "error", err)
			return
		}

		roomId, err := s.currentRoom(ctx, params.ConnId)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to get current room", "conn_id", params.ConnId, "error", err)
			return
		}

		s.broadcastPresence(ctx, roomId)
	})
}
