package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pustaka-backend/internal/messaging"
)

func writeEvent(w http.ResponseWriter, seq uint64, kind string) {
	fmt.Fprintf(w, "id: %d\nevent: %s\ndata: {\"seq\":%d,\"kind\":%q,\"conversation_id\":\"c1\"}\n\n", seq, kind, seq, kind)
	w.(http.Flusher).Flush()
}

func Test_Subscribe_DropsStaleSequences(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/messages/stream", r.URL.Path)
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "id: 0\nevent: ready\ndata: {\"seq\":0}\n\n")
		w.(http.Flusher).Flush()

		writeEvent(w, 1, "message")
		writeEvent(w, 2, "message")
		// Duplicate delivery of seq 2 and an older seq must be dropped.
		writeEvent(w, 2, "message")
		writeEvent(w, 1, "read")
		writeEvent(w, 3, "conversation")
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx, cancel := context.WithCancel(context.Background())

	var (
		resyncs int
		got     []messaging.Event
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Subscribe(ctx, func() { resyncs++ }, func(ev messaging.Event) {
			got = append(got, ev)
			if ev.Seq == 3 {
				cancel()
			}
		})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("subscription did not finish")
	}

	require.Len(t, got, 3)
	assert.Equal(t, uint64(1), got[0].Seq)
	assert.Equal(t, uint64(2), got[1].Seq)
	assert.Equal(t, uint64(3), got[2].Seq)
	assert.Equal(t, messaging.EventConversation, got[2].Kind)
	assert.GreaterOrEqual(t, resyncs, 1, "every connect starts with a resync")
}

func Test_Subscribe_BackoffResetsAfterHealthyConnection(t *testing.T) {
	var (
		mu    sync.Mutex
		stamp []time.Time
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		stamp = append(stamp, time.Now())
		mu.Unlock()
		// A healthy connection: ready arrives, then the server drops it.
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "id: 0\nevent: ready\ndata: {\"seq\":0}\n\n")
		w.(http.Flusher).Flush()
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.reconnectMin = 10 * time.Millisecond
	c.reconnectMax = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	connects := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Subscribe(ctx, func() {
			connects++
			if connects >= 8 {
				cancel()
			}
		}, func(messaging.Event) {})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("subscription did not finish")
	}

	// Without the reset, gaps double every drop (10ms, 20ms, ... 640ms).
	// With it every gap stays near reconnectMin.
	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(stamp), 8)
	for i := 1; i < len(stamp); i++ {
		gap := stamp[i].Sub(stamp[i-1])
		assert.Less(t, gap, 200*time.Millisecond, "reconnect gap %d grew despite healthy connections", i)
	}
}

func Test_Subscribe_ReportsStreamErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.reconnectMin = 5 * time.Millisecond
	c.reconnectMax = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	c.OnStreamError(func(err error) {
		select {
		case errs <- err:
		default:
		}
		cancel()
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Subscribe(ctx, nil, func(messaging.Event) {})
	}()

	select {
	case err := <-errs:
		assert.ErrorContains(t, err, "http 500")
	case <-time.After(5 * time.Second):
		t.Fatal("stream error was not reported")
	}
	<-done
}

func Test_Subscribe_StopsOnContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "id: 0\nevent: ready\ndata: {\"seq\":0}\n\n")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- c.Subscribe(ctx, nil, func(messaging.Event) {})
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Subscribe did not return after cancel")
	}
}
