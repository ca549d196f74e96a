package finnhub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	drepo "QuantFuse/internal/domain/repository"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "TSLA", r.URL.Query().Get("symbol"))
		assert.Equal(t, "k", r.URL.Query().Get("token"))
		_, _ = w.Write([]byte(`{"c":251.2,"d":-3.1,"dp":-1.22,"h":255,"l":249.5,"o":254,"pc":254.3,"t":1700000000}`))
	}))
	defer srv.Close()

	q, err := NewQuoteClient("k", srv.URL, time.Second).GetQuote(context.Background(), "TSLA")
	require.NoError(t, err)
	assert.Equal(t, 251.2, q.Price)
	assert.Equal(t, -1.22, q.ChangePercent)
	assert.Equal(t, 254.3, q.PreviousClose)
	assert.Equal(t, "finnhub", q.Source)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), q.Timestamp)
}

func TestQuoteClientZeroPriceIsNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"c":0,"d":null,"dp":null,"h":0,"l":0,"o":0,"pc":0,"t":0}`))
	}))
	defer srv.Close()

	_, err := NewQuoteClient("k", srv.URL, time.Second).GetQuote(context.Background(), "NOPE")
	assert.ErrorIs(t, err, drepo.ErrNoData)
}

func TestQuoteClientThrottled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewQuoteClient("k", srv.URL, time.Second).GetQuote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, drepo.ErrRateLimited)
}

func TestDecodeTrades(t *testing.T) {
	trades := decodeTrades([]byte(`{"type":"trade","data":[{"s":"AAPL","p":190.5,"v":10,"t":1700000000123}]}`))
	require.Len(t, trades, 1)
	assert.Equal(t, "AAPL", trades[0].Symbol)
	assert.Equal(t, int64(1700000000), trades[0].Timestamp)

	assert.Nil(t, decodeTrades([]byte(`{"type":"ping"}`)))
	assert.Nil(t, decodeTrades([]byte(`not json`)))
}

func TestStreamSubscribeAndRead(t *testing.T) {
	upgrader := websocket.Upgrader{}
	subscribed := make(chan string, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k", r.URL.Query().Get("token"))
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		var sub map[string]string
		require.NoError(t, conn.ReadJSON(&sub))
		subscribed <- sub["symbol"]
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"trade","data":[{"s":"AAPL","p":190.5,"v":10,"t":1700000000000}]}`))
		// hold the connection until the client closes it
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	s := NewStream("k", wsURL, []string{"AAPL"}, 10*time.Millisecond, time.Hour, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Connect(ctx))
	require.NoError(t, s.Subscribe(ctx))
	assert.True(t, s.IsConnected())
	assert.Equal(t, "AAPL", <-subscribed)

	trades, _ := s.Read(ctx)
	select {
	case tr := <-trades:
		require.NotNil(t, tr)
		assert.Equal(t, 190.5, tr.Price)
	case <-ctx.Done():
		t.Fatal("no trade received")
	}

	require.NoError(t, s.Close())
	assert.False(t, s.IsConnected())
}
