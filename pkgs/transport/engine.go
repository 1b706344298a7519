package transport

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/mpunie/govelbus/pkgs/frame"
)

// Pacing constants, per spec.md §6: a minimum of ~60ms between frames, and
// roughly 33x that for the channel-name-request command (0xEF) since the
// worst-case response burst from an input module is ~99 packets.
const (
	Pacing           = 60 * time.Millisecond
	ChannelNamePacingFactor = 33

	readBufferSize = frame.MaxMessageSize * 4
	writeRetries   = 10
)

// ErrConnectionFailed surfaces a transport connect failure to the caller,
// per spec.md §7.
var ErrConnectionFailed = errors.New("transport: connection failed")

// Handler receives every frame decoded off the wire, in arrival order.
type Handler func(frame.RawMessage)

// Engine owns the single underlying transport (TCP, TLS or serial), a FIFO
// outbound queue with paced, backed-off writes, and the reader loop that
// reframes incoming bytes and dispatches decoded messages to Handler.
// Grounded on commandstation/z21.go's connect/write/retry shape, generalized
// to the three spec.md §6 DSN forms and given its own pacing and reconnect
// loop (z21.go has neither, since Z21 is single-request/single-reply).
type Engine struct {
	mu      sync.Mutex
	dsn     DSN
	conn    io.ReadWriteCloser
	handler Handler

	outbound chan frame.RawMessage
	closing  bool
	closed   chan struct{}

	OnDisconnect func(error)
}

// New builds an Engine bound to dsn. Call Connect to open the transport and
// start the reader/writer goroutines.
func New(dsn DSN, handler Handler) *Engine {
	return &Engine{
		dsn:      dsn,
		handler:  handler,
		outbound: make(chan frame.RawMessage, 256),
		closed:   make(chan struct{}),
	}
}

// Connect opens the transport, writes the DSN password (if any) as raw
// bytes ahead of any framed traffic, and starts the reader and writer
// goroutines. On failure it returns ErrConnectionFailed wrapping the cause.
func (e *Engine) Connect() error {
	conn, err := e.dial()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	if e.dsn.Password != "" {
		if _, err := conn.Write([]byte(e.dsn.Password)); err != nil {
			conn.Close()
			return fmt.Errorf("%w: writing auth token: %v", ErrConnectionFailed, err)
		}
	}

	e.mu.Lock()
	e.conn = conn
	e.mu.Unlock()

	go e.readLoop(conn)
	go e.writeLoop(conn)
	return nil
}

func (e *Engine) dial() (io.ReadWriteCloser, error) {
	if e.dsn.Kind == KindSerial {
		return dialSerial(e.dsn.Path)
	}
	return dialTCP(e.dsn, 10*time.Second)
}

// Send enqueues msg for paced transmission. Frames leave the wire in the
// order they were enqueued (spec.md §5).
func (e *Engine) Send(msg frame.RawMessage) error {
	e.mu.Lock()
	closing := e.closing
	e.mu.Unlock()
	if closing {
		return fmt.Errorf("transport: engine is closing")
	}
	e.outbound <- msg
	return nil
}

// Stop cancels the writer, closes the transport and disables auto-reconnect.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.closing {
		e.mu.Unlock()
		return
	}
	e.closing = true
	conn := e.conn
	e.mu.Unlock()

	close(e.closed)
	if conn != nil {
		conn.Close()
	}
}

func (e *Engine) readLoop(conn io.ReadWriteCloser) {
	buf := make([]byte, 0, readBufferSize)
	chunk := make([]byte, readBufferSize)
	for {
		n, err := conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			for {
				var msg *frame.RawMessage
				msg, buf = frame.Decode(buf)
				if msg == nil {
					break
				}
				if e.handler != nil {
					e.handler(*msg)
				}
			}
		}
		if err != nil {
			e.handleDisconnect(err)
			return
		}
	}
}

func (e *Engine) handleDisconnect(err error) {
	e.mu.Lock()
	closing := e.closing
	e.mu.Unlock()
	if closing {
		return
	}
	logrus.WithError(err).Warn("transport: connection lost, reconnecting")
	if e.OnDisconnect != nil {
		e.OnDisconnect(err)
	}
	e.reconnect()
}

// reconnect schedules an immediate reconnect, per spec.md §4.H, checking the
// closing flag first so a concurrent Stop wins.
func (e *Engine) reconnect() {
	e.mu.Lock()
	if e.closing {
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	if err := e.Connect(); err != nil {
		logrus.WithError(err).Warn("transport: reconnect failed, retrying")
		time.AfterFunc(time.Second, e.reconnect)
	}
}

func (e *Engine) writeLoop(conn io.ReadWriteCloser) {
	var pending *frame.RawMessage
	for {
		if pending == nil {
			select {
			case <-e.closed:
				return
			case msg := <-e.outbound:
				pending = &msg
			}
		}

		e.mu.Lock()
		current := e.conn
		e.mu.Unlock()
		if current != conn {
			// a reconnect swapped in a new connection; let its own writer
			// goroutine take the still-pending message from the queue head.
			e.outbound <- *pending
			return
		}

		if err := e.writeWithRetry(conn, *pending); err != nil {
			logrus.WithError(err).Error("transport: write failed after retries, surfacing reconnect")
			e.outbound <- *pending // keep the message at the queue head
			return
		}
		pending = nil
	}
}

// writeWithRetry retries a failed frame write with exponential backoff up to
// writeRetries attempts, per spec.md §4.H/§7. Grounded on the original's use
// of the `backoff` package in protocol.py's _write_message.
func (e *Engine) writeWithRetry(conn io.ReadWriteCloser, msg frame.RawMessage) error {
	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), writeRetries)
	return backoff.Retry(func() error {
		_, err := conn.Write(msg.Encode())
		if err != nil {
			return err
		}
		e.pace(msg)
		return nil
	}, policy)
}

func (e *Engine) pace(msg frame.RawMessage) {
	delay := Pacing
	if cmd, ok := msg.Command(); ok && cmd == 0xEF {
		delay *= ChannelNamePacingFactor
	}
	time.Sleep(delay)
}
