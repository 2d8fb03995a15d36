package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"PriceWatch/internal/domain/models"
	drepo "PriceWatch/internal/domain/repository"
	"PriceWatch/pkg/logger"
	"PriceWatch/pkg/metrics"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

// Stream implements MarketStream against the Binance per-symbol ticker stream.
type Stream struct {
	baseURL      string
	dialer       *websocket.Dialer
	pingInterval time.Duration

	reconnect bool
	baseDelay time.Duration
	maxDelay  time.Duration

	log     *logger.Logger
	metrics drepo.Metrics
}

// StreamOption configures Stream.
type StreamOption func(*Stream)

// NewStream creates a Binance MarketStream.
func NewStream(opts ...StreamOption) *Stream {
	s := &Stream{
		baseURL:      "wss://stream.binance.com:9443/ws",
		dialer:       &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		pingInterval: 30 * time.Second,
		reconnect:    true,
		baseDelay:    time.Second,
		maxDelay:     time.Minute,
		log:          logger.NewNop(),
		metrics:      metrics.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// tickerFrame is the subset of the 24hr ticker payload we read.
type tickerFrame struct {
	Symbol string `json:"s"`
	Close  string `json:"c"`
}

// StreamURL returns the ticker stream endpoint for symbol.
func (s *Stream) StreamURL(symbol string) string {
	return fmt.Sprintf("%s/%s@ticker", strings.TrimRight(s.baseURL, "/"), strings.ToLower(symbol))
}

// Stream forwards ticks for symbol into out until ctx is cancelled. With
// reconnect disabled it also returns when the first connection fails or ends.
func (s *Stream) Stream(ctx context.Context, symbol string, out chan<- *models.Tick) error {
	log := s.log.With(logger.String("symbol", symbol))
	url := s.StreamURL(symbol)
	delay := s.baseDelay

	for {
		conn, _, err := s.dialer.DialContext(ctx, url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.metrics.RecordError("feed_connect")
			if !s.reconnect {
				log.Error("feed connect failed", logger.Error(err))
				return fmt.Errorf("%w: %s: %v", models.ErrFeedConnect, symbol, err)
			}
			log.Warn("feed connect failed, retrying",
				logger.Error(err),
				logger.Duration("backoff", delay),
			)
		} else {
			log.Info("feed connected", logger.String("url", url))

			var delivered bool
			delivered, err = s.session(ctx, conn, symbol, out)
			if ctx.Err() != nil {
				return nil
			}
			s.metrics.RecordError("feed_disconnect")
			// only a session that produced ticks counts as healthy
			if delivered {
				delay = s.baseDelay
			}
			if !s.reconnect {
				log.Info("feed closed", logger.Error(err))
				return fmt.Errorf("binance %s: %w", symbol, err)
			}
			log.Warn("feed dropped, reconnecting",
				logger.Error(err),
				logger.Duration("backoff", delay),
			)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
		delay *= 2
		if delay > s.maxDelay {
			delay = s.maxDelay
		}
	}
}

type frame struct {
	kind int
	data []byte
}

// session pumps one connection and reports whether it forwarded any tick.
// It always closes conn and joins its reader.
func (s *Stream) session(ctx context.Context, conn *websocket.Conn, symbol string, out chan<- *models.Tick) (bool, error) {
	delivered := false
	frames := make(chan frame)
	readErr := make(chan error, 1)
	done := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			kind, data, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case frames <- frame{kind: kind, data: data}:
			case <-done:
				return
			}
		}
	}()
	defer func() {
		close(done)
		_ = conn.Close()
		wg.Wait()
	}()

	var ping <-chan time.Time
	if s.pingInterval > 0 {
		t := time.NewTicker(s.pingInterval)
		defer t.Stop()
		ping = t.C
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return delivered, ctx.Err()
		case err := <-readErr:
			return delivered, err
		case <-ping:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return delivered, fmt.Errorf("ping: %w", err)
			}
		case f := <-frames:
			price, ok := parseFrame(f)
			if !ok {
				s.metrics.RecordError("malformed_frame")
				continue
			}
			tick := &models.Tick{Symbol: symbol, Price: price, ReceivedAt: time.Now()}
			select {
			case out <- tick:
				delivered = true
			case <-ctx.Done():
				return delivered, ctx.Err()
			}
		}
	}
}

// parseFrame extracts the last price from a text ticker frame.
func parseFrame(f frame) (float64, bool) {
	if f.kind != websocket.TextMessage {
		return 0, false
	}
	var tf tickerFrame
	if err := json.Unmarshal(f.data, &tf); err != nil {
		return 0, false
	}
	if tf.Symbol == "" || tf.Close == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(tf.Close)
	if err != nil {
		return 0, false
	}
	v := d.InexactFloat64()
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// WithBaseURL sets the websocket base URL; the stream path is appended.
func WithBaseURL(url string) StreamOption {
	return func(s *Stream) {
		s.baseURL = url
	}
}

// WithDialTimeout sets the websocket handshake timeout.
func WithDialTimeout(d time.Duration) StreamOption {
	return func(s *Stream) {
		s.dialer.HandshakeTimeout = d
	}
}

// WithPingInterval sets the keepalive interval; 0 disables pings.
func WithPingInterval(d time.Duration) StreamOption {
	return func(s *Stream) {
		s.pingInterval = d
	}
}

// WithReconnect configures exponential backoff reconnects.
func WithReconnect(enabled bool, baseDelay, maxDelay time.Duration) StreamOption {
	return func(s *Stream) {
		s.reconnect = enabled
		if baseDelay > 0 {
			s.baseDelay = baseDelay
		}
		if maxDelay >= s.baseDelay {
			s.maxDelay = maxDelay
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) StreamOption {
	return func(s *Stream) {
		s.log = l.With(logger.Component("binance"))
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m drepo.Metrics) StreamOption {
	return func(s *Stream) {
		s.metrics = m
	}
}
