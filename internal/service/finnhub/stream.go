package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"QuantFuse/internal/domain/models"
	drepo "QuantFuse/internal/domain/repository"
	applogger "QuantFuse/pkg/logger"

	"github.com/gorilla/websocket"
)

const DefaultStreamURL = "wss://ws.finnhub.io"

// Stream implements MarketStream over the Finnhub trade WebSocket.
type Stream struct {
	apiKey         string
	websocketURL   string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *applogger.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
}

// NewStream creates a trade stream for symbols.
func NewStream(apiKey, websocketURL string, symbols []string, reconnectDelay, pingInterval time.Duration, log *applogger.Logger) *Stream {
	if websocketURL == "" {
		websocketURL = DefaultStreamURL
	}
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	if log == nil {
		log = applogger.Nop()
	}
	return &Stream{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		log:            log.Component("finnhub_stream"),
	}
}

// Connect establishes the WebSocket connection.
func (s *Stream) Connect(ctx context.Context) error {
	u, err := url.Parse(s.websocketURL)
	if err != nil {
		return fmt.Errorf("finnhub connect: %w", err)
	}
	q := u.Query()
	q.Set("token", s.apiKey)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("finnhub connect: %w", err)
	}
	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.mu.Unlock()
	s.log.Info("connected", applogger.String("url", s.websocketURL))
	return nil
}

// Subscribe subscribes to configured symbols.
func (s *Stream) Subscribe(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil || !s.connected {
		return fmt.Errorf("finnhub not connected")
	}
	for _, sym := range s.symbols {
		msg := map[string]string{"type": "subscribe", "symbol": sym}
		if err := s.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", sym, err)
		}
	}
	s.log.Info("subscribed", applogger.Strings("symbols", s.symbols))
	return nil
}

type fhTrade struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	V float64 `json:"v"`
	T int64   `json:"t"` // ms
}

type fhMessage struct {
	Type string    `json:"type"`
	Data []fhTrade `json:"data"`
}

// Read streams Trade events and errors. Both channels close when the read
// loop exits.
func (s *Stream) Read(ctx context.Context) (<-chan *models.Trade, <-chan error) {
	trades := make(chan *models.Trade, 1024)
	errs := make(chan error, 1)

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	go s.pingLoop(ctx, conn)

	go func() {
		defer close(trades)
		defer close(errs)
		if conn == nil {
			errs <- fmt.Errorf("finnhub conn nil")
			return
		}
		for {
			if ctx.Err() != nil {
				return
			}
			_, b, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					errs <- fmt.Errorf("finnhub read: %w", err)
				}
				return
			}
			for _, t := range decodeTrades(b) {
				select {
				case trades <- t:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return trades, errs
}

func (s *Stream) pingLoop(ctx context.Context, conn *websocket.Conn) {
	if conn == nil {
		return
	}
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			err := conn.WriteMessage(websocket.PingMessage, nil)
			s.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// decodeTrades ignores non-trade frames such as pings.
func decodeTrades(b []byte) []*models.Trade {
	var m fhMessage
	if err := json.Unmarshal(b, &m); err != nil || m.Type != "trade" {
		return nil
	}
	out := make([]*models.Trade, 0, len(m.Data))
	for _, d := range m.Data {
		out = append(out, &models.Trade{Symbol: d.S, Price: d.P, Volume: d.V, Timestamp: d.T / 1000})
	}
	return out
}

// Reconnect closes and reconnects after the configured delay.
func (s *Stream) Reconnect(ctx context.Context) error {
	_ = s.Close()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.reconnectDelay):
	}
	if err := s.Connect(ctx); err != nil {
		return err
	}
	return s.Subscribe(ctx)
}

// Close closes the WS connection.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	if s.conn != nil {
		err := s.conn.Close()
		s.conn = nil
		return err
	}
	return nil
}

// IsConnected indicates status.
func (s *Stream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

var _ drepo.MarketStream = (*Stream)(nil)
