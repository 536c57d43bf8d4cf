package gateway

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(userID, connID string, queue int) *Client {
	return &Client{
		sess: newSession(userID, connID),
		send: make(chan []byte, queue),
		done: make(chan struct{}),
	}
}

func TestFanoutDelivers(t *testing.T) {
	f := NewFanout(2, 16)
	defer f.Close()

	a := testClient("u1", "c1", 8)
	b := testClient("u2", "c2", 8)

	f.Broadcast(ChannelRoom("10"), []*Client{a, b}, []byte("x"))

	for _, c := range []*Client{a, b} {
		select {
		case got := <-c.send:
			assert.Equal(t, []byte("x"), got)
		case <-time.After(time.Second):
			t.Fatalf("client %s got nothing", c.sess.ConnID)
		}
	}
}

// Broadcasts into one room reach each client's queue in emit order.
func TestFanoutPerRoomOrder(t *testing.T) {
	f := NewFanout(4, 64)
	defer f.Close()

	c := testClient("u1", "c1", 64)
	room := ChannelRoom("10")

	const n = 32
	for i := 0; i < n; i++ {
		f.Broadcast(room, []*Client{c}, []byte(fmt.Sprintf("m%d", i)))
	}

	for i := 0; i < n; i++ {
		select {
		case got := <-c.send:
			require.Equal(t, fmt.Sprintf("m%d", i), string(got))
		case <-time.After(time.Second):
			t.Fatalf("missing frame %d", i)
		}
	}
}

func TestFanoutSkipsEmptyWork(t *testing.T) {
	f := NewFanout(1, 4)
	defer f.Close()

	// both no-ops, must not panic or enqueue
	f.Broadcast(ChannelRoom("10"), nil, []byte("x"))
	c := testClient("u1", "c1", 4)
	f.Broadcast(ChannelRoom("10"), []*Client{c}, nil)

	select {
	case <-c.send:
		t.Fatal("unexpected frame")
	case <-time.After(50 * time.Millisecond):
	}
}

// A slow client drops frames instead of blocking the worker.
func TestFanoutSlowClientDoesNotBlock(t *testing.T) {
	f := NewFanout(1, 4)
	defer f.Close()

	slow := testClient("u1", "c1", 1)
	fast := testClient("u2", "c2", 8)

	f.Broadcast(ChannelRoom("10"), []*Client{slow, fast}, []byte("a"))
	f.Broadcast(ChannelRoom("10"), []*Client{slow, fast}, []byte("b"))

	// fast client still gets both
	for _, want := range []string{"a", "b"} {
		select {
		case got := <-fast.send:
			assert.Equal(t, want, string(got))
		case <-time.After(time.Second):
			t.Fatal("fast client starved")
		}
	}
}
