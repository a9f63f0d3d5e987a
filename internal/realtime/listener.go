// Package realtime relays database change notifications to connected
// clients. Message inserts fire a NOTIFY trigger; a single dedicated
// connection listens and fans the payloads out to per-channel subscribers.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"skillbridge-api/internal/domain"
	"skillbridge-api/pkg/logger"
)

// NotifyChannel is the LISTEN/NOTIFY channel the messages trigger fires on
const NotifyChannel = "community_messages"

// subscriberBuffer bounds each subscriber's queue. A subscriber that stops
// draining loses messages rather than stalling the fan-out.
const subscriberBuffer = 32

// reconnectDelay spaces out reconnect attempts when the listen connection
// cannot be (re)established
const reconnectDelay = 2 * time.Second

// Listener holds one pooled connection in LISTEN mode and fans incoming
// message payloads out to subscribers keyed by community channel id
type Listener struct {
	pool       *pgxpool.Pool
	logger     *logger.Logger
	retryDelay time.Duration

	mu          sync.Mutex
	subscribers map[string]map[chan domain.Message]struct{}
	running     bool
	cancel      context.CancelFunc
	done        chan struct{}
}

// NewListener creates a new realtime listener
func NewListener(pool *pgxpool.Pool, logger *logger.Logger) *Listener {
	return &Listener{
		pool:        pool,
		logger:      logger,
		retryDelay:  reconnectDelay,
		subscribers: make(map[string]map[chan domain.Message]struct{}),
	}
}

// Start acquires a connection, issues LISTEN and begins the fan-out loop
func (l *Listener) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	l.running = true
	l.cancel = cancel
	l.done = make(chan struct{})

	go l.run(runCtx)

	l.logger.WithField("notify_channel", NotifyChannel).Info("Realtime listener started")
	return nil
}

// Stop cancels the listen loop and waits for it to exit
func (l *Listener) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	cancel, done := l.cancel, l.done
	l.mu.Unlock()

	cancel()
	<-done
	l.logger.Info("Realtime listener stopped")
}

// Subscribe registers for live messages on a community channel. The
// returned cancel function must be called when the client disconnects.
func (l *Listener) Subscribe(channelID string) (<-chan domain.Message, func()) {
	ch := make(chan domain.Message, subscriberBuffer)

	l.mu.Lock()
	if l.subscribers[channelID] == nil {
		l.subscribers[channelID] = make(map[chan domain.Message]struct{})
	}
	l.subscribers[channelID][ch] = struct{}{}
	l.mu.Unlock()

	cancel := func() {
		l.mu.Lock()
		if subs, ok := l.subscribers[channelID]; ok {
			delete(subs, ch)
			if len(subs) == 0 {
				delete(l.subscribers, channelID)
			}
		}
		l.mu.Unlock()
	}
	return ch, cancel
}

func (l *Listener) run(ctx context.Context) {
	defer close(l.done)

	for {
		if err := l.listen(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			l.logger.WithError(err).Warn("Listen connection lost, reconnecting")
		}

		// Pause before redialling; with the database down an immediate
		// retry fails just as fast and spins the loop.
		select {
		case <-ctx.Done():
			return
		case <-time.After(l.retryDelay):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+NotifyChannel); err != nil {
		return err
	}

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		l.dispatch(notification.Payload)
	}
}

func (l *Listener) dispatch(payload string) {
	var msg domain.Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		l.logger.WithError(err).Warn("Dropping unparseable notification payload")
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for ch := range l.subscribers[msg.ChannelID] {
		select {
		case ch <- msg:
		default:
			// Slow subscriber; drop rather than block the loop.
		}
	}
}
