package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, lotID, id string) *Client {
	return &Client{
		Hub:   hub,
		Send:  make(chan []byte, 4),
		LotID: lotID,
		ID:    id,
	}
}

func receiveWithin(t *testing.T, c *Client, d time.Duration) []byte {
	t.Helper()
	select {
	case data := <-c.Send:
		return data
	case <-time.After(d):
		t.Fatal("timed out waiting for broadcast")
		return nil
	}
}

func TestHub_BroadcastReachesLotAndWildcardObservers(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	lotObserver := newTestClient(hub, "L1", "lot-observer")
	otherLot := newTestClient(hub, "L2", "other-lot")
	wildcard := newTestClient(hub, AllLots, "wildcard")
	hub.RegisterClient(lotObserver)
	hub.RegisterClient(otherLot)
	hub.RegisterClient(wildcard)
	time.Sleep(50 * time.Millisecond)

	hub.BroadcastToLot("L1", []byte("bid accepted"))

	assert.Equal(t, "bid accepted", string(receiveWithin(t, lotObserver, time.Second)))
	assert.Equal(t, "bid accepted", string(receiveWithin(t, wildcard, time.Second)))
	select {
	case data := <-otherLot.Send:
		t.Fatalf("observer of another lot received %q", data)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_PerLotBroadcastOrderIsPreserved(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	observer := &Client{Hub: hub, Send: make(chan []byte, 16), LotID: "L1", ID: "observer"}
	hub.RegisterClient(observer)
	time.Sleep(50 * time.Millisecond)

	messages := []string{"first", "second", "third"}
	for _, msg := range messages {
		hub.BroadcastToLot("L1", []byte(msg))
	}

	for _, want := range messages {
		assert.Equal(t, want, string(receiveWithin(t, observer, time.Second)))
	}
}

func TestHub_SlowObserverIsDroppedNotBlocking(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	// Buffer of one: the second broadcast overflows and drops the client.
	slow := &Client{Hub: hub, Send: make(chan []byte, 1), LotID: "L1", ID: "slow"}
	healthy := newTestClient(hub, "L1", "healthy")
	hub.RegisterClient(slow)
	hub.RegisterClient(healthy)
	time.Sleep(50 * time.Millisecond)

	hub.BroadcastToLot("L1", []byte("one"))
	hub.BroadcastToLot("L1", []byte("two"))

	assert.Equal(t, "one", string(receiveWithin(t, healthy, time.Second)))
	assert.Equal(t, "two", string(receiveWithin(t, healthy, time.Second)))

	// The slow client got the first message and was then dropped: its send
	// channel ends up closed after draining.
	assert.Equal(t, "one", string(receiveWithin(t, slow, time.Second)))
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-slow.Send:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	observer := newTestClient(hub, "L1", "observer")
	hub.RegisterClient(observer)
	time.Sleep(50 * time.Millisecond)

	cancel()

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-observer.Send:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}
