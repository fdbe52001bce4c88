package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/JBBSoftech/watter/internal/models"
	"github.com/JBBSoftech/watter/internal/platform"
	"github.com/JBBSoftech/watter/internal/util"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// State of the channel connection.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// EventHandler receives every named event delivered on the channel.
type EventHandler func(models.RealtimeEvent)

// Options configure the channel's transport and reconnection policy.
type Options struct {
	URL               string
	MaxReconnects     int
	ReconnectInterval time.Duration
	Dialer            *websocket.Dialer
}

// Channel maintains a persistent connection to the tenant-scoped update
// stream. On connect it joins the tenant room; on failure it reconnects a
// bounded number of times with a fixed delay. An explicit Close stops
// reconnection for good.
type Channel struct {
	opts    Options
	session *platform.Session
	logger  *zap.Logger

	mu         sync.Mutex
	conn       *websocket.Conn
	state      State
	roomJoined bool
	handlers   []EventHandler

	closed    chan struct{}
	done      chan struct{}
	started   bool
	cancel    context.CancelFunc
	closeOnce sync.Once
	startOnce sync.Once
}

// NewChannel creates a channel for the session's tenant. Handlers must be
// registered before Start.
func NewChannel(opts Options, session *platform.Session) *Channel {
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	if opts.ReconnectInterval <= 0 {
		opts.ReconnectInterval = 3 * time.Second
	}
	return &Channel{
		opts:    opts,
		session: session,
		logger:  util.GetLogger(),
		closed:  make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// OnEvent registers a handler for delivered events. Handlers run on the
// channel's read goroutine and must not block for long.
func (c *Channel) OnEvent(handler EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, handler)
}

// Start begins connecting in the background. It never blocks the caller.
func (c *Channel) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(ctx)
		c.mu.Lock()
		c.started = true
		c.cancel = cancel
		c.mu.Unlock()
		go c.run(ctx)
	})
}

// Close tears down the connection and stops all reconnection attempts. It is
// safe to call more than once.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.mu.Lock()
		if c.cancel != nil {
			c.cancel()
		}
		if c.conn != nil {
			_ = c.conn.Close()
		}
		c.mu.Unlock()
	})
	c.mu.Lock()
	started := c.started
	c.mu.Unlock()
	if started {
		<-c.done
	}
	return nil
}

// IsConnected reports whether the channel is currently connected.
func (c *Channel) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == Connected
}

// RoomJoined reports whether the server acknowledged the room join. Event
// delivery does not depend on it.
func (c *Channel) RoomJoined() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomJoined
}

func (c *Channel) run(ctx context.Context) {
	defer close(c.done)

	attempts := 0
	for {
		select {
		case <-c.closed:
			return
		case <-ctx.Done():
			return
		default:
		}

		c.setState(Connecting)
		conn, _, err := c.opts.Dialer.DialContext(ctx, c.opts.URL, nil)
		if err != nil {
			c.setState(Disconnected)
			attempts++
			c.logger.Warn("Realtime dial failed",
				zap.String("url", c.opts.URL),
				zap.Int("attempt", attempts),
				zap.Error(err))
			if attempts > c.opts.MaxReconnects {
				c.logger.Error("Realtime reconnect attempts exhausted",
					zap.Int("max", c.opts.MaxReconnects))
				return
			}
			util.RealtimeReconnectsTotal.Inc()
			if !c.sleep() {
				return
			}
			continue
		}

		c.mu.Lock()
		c.conn = conn
		c.state = Connected
		c.mu.Unlock()
		util.RealtimeConnectsTotal.Inc()
		attempts = 0

		if err := c.joinRoom(conn); err != nil {
			c.logger.Warn("Failed to emit room join", zap.Error(err))
		}

		c.readLoop(conn)

		c.mu.Lock()
		c.conn = nil
		c.state = Disconnected
		c.roomJoined = false
		c.mu.Unlock()

		select {
		case <-c.closed:
			return
		case <-ctx.Done():
			return
		default:
		}

		attempts++
		if attempts > c.opts.MaxReconnects {
			c.logger.Error("Realtime reconnect attempts exhausted",
				zap.Int("max", c.opts.MaxReconnects))
			return
		}
		util.RealtimeReconnectsTotal.Inc()
		if !c.sleep() {
			return
		}
	}
}

// joinRoom emits the tenant room join message. The ack is observed in the
// read loop but correctness does not depend on it.
func (c *Channel) joinRoom(conn *websocket.Conn) error {
	payload, err := json.Marshal(models.JoinRoomMessage{TenantID: c.session.TenantID()})
	if err != nil {
		return err
	}
	return conn.WriteJSON(models.RealtimeEvent{
		Kind:    models.EventKindJoinAdminRoom,
		Payload: payload,
	})
}

func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		var event models.RealtimeEvent
		if err := conn.ReadJSON(&event); err != nil {
			select {
			case <-c.closed:
			default:
				c.logger.Warn("Realtime read failed", zap.Error(err))
			}
			return
		}

		util.RealtimeEventsTotal.WithLabelValues(event.Kind).Inc()

		if event.Kind == models.EventKindRoomJoined {
			c.mu.Lock()
			c.roomJoined = true
			c.mu.Unlock()
		}

		c.dispatch(event)
	}
}

func (c *Channel) dispatch(event models.RealtimeEvent) {
	c.mu.Lock()
	handlers := make([]EventHandler, len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.Unlock()

	for _, handler := range handlers {
		handler(event)
	}
}

func (c *Channel) setState(state State) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

// sleep waits one reconnect interval; it returns false if the channel was
// closed while waiting.
func (c *Channel) sleep() bool {
	timer := time.NewTimer(c.opts.ReconnectInterval)
	defer timer.Stop()
	select {
	case <-c.closed:
		return false
	case <-timer.C:
		return true
	}
}
