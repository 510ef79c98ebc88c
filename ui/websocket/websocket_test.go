package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	domainTimer "github.com/AzielCF/az-cube/domains/timer"
	timerDomain "github.com/AzielCF/az-cube/timer/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeConn struct {
	mu       sync.Mutex
	messages []BroadcastMessage
	failing  bool
	closed   bool
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return errors.New("broken pipe")
	}
	var msg BroadcastMessage
	if err := json.Unmarshal(data, &msg); err == nil {
		c.messages = append(c.messages, msg)
	}
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) codes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, m := range c.messages {
		out = append(out, m.Code)
	}
	return out
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type fakePubSub struct {
	mu        sync.Mutex
	published []BroadcastMessage
	handler   func([]byte)
}

func (p *fakePubSub) Publish(ctx context.Context, channel string, payload []byte) error {
	var msg BroadcastMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return err
	}
	p.mu.Lock()
	p.published = append(p.published, msg)
	p.mu.Unlock()
	return nil
}

func (p *fakePubSub) Subscribe(ctx context.Context, channel string, fn func([]byte)) error {
	p.mu.Lock()
	p.handler = fn
	p.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

func (p *fakePubSub) deliver(msg BroadcastMessage) bool {
	p.mu.Lock()
	fn := p.handler
	p.mu.Unlock()
	if fn == nil {
		return false
	}
	data, _ := json.Marshal(msg)
	fn(data)
	return true
}

func (p *fakePubSub) publishedCodes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, m := range p.published {
		out = append(out, m.Code)
	}
	return out
}

type mockTimer struct {
	domainTimer.ITimerUsecase
	mock.Mock
}

func (m *mockTimer) KeyDown(ctx context.Context) (timerDomain.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(timerDomain.Snapshot), args.Error(1)
}

func startHub(t *testing.T, pubsub PubSub) (*Hub, func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	var hub *Hub
	if pubsub != nil {
		hub = NewHub(pubsub, "server-a", nil)
	} else {
		hub = NewHub(nil, "server-a", nil)
	}
	go hub.RunHub(ctx)
	return hub, func() {
		cancel()
		<-hub.done
	}
}

func TestHub_BroadcastAndPublish(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	pubsub := &fakePubSub{}
	hub, stop := startHub(t, pubsub)
	defer stop()

	conn := &fakeConn{}
	hub.register <- conn

	hub.Broadcast(BroadcastMessage{Code: CodeTimerEvent})
	hub.broadcastLocal(BroadcastMessage{Code: CodeSettingsChanged})

	assert.Eventually(t, func() bool {
		return len(conn.codes()) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{CodeTimerEvent, CodeSettingsChanged}, conn.codes())
	assert.Equal(t, []string{CodeTimerEvent}, pubsub.publishedCodes())
}

func TestHub_RemoteMessages(t *testing.T) {
	pubsub := &fakePubSub{}
	hub, stop := startHub(t, pubsub)
	defer stop()

	conn := &fakeConn{}
	hub.register <- conn

	require.Eventually(t, func() bool {
		return pubsub.deliver(BroadcastMessage{Code: "OWN", SenderID: "server-a"})
	}, time.Second, 5*time.Millisecond)
	pubsub.deliver(BroadcastMessage{Code: CodeTimerEvent, SenderID: "server-b"})

	assert.Eventually(t, func() bool {
		return len(conn.codes()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{CodeTimerEvent}, conn.codes())
	// remote messages are not published again
	assert.Empty(t, pubsub.publishedCodes())
}

func TestHub_BrokenConnectionIsDropped(t *testing.T) {
	hub, stop := startHub(t, nil)

	broken := &fakeConn{failing: true}
	healthy := &fakeConn{}
	hub.register <- broken
	hub.register <- healthy

	hub.Broadcast(BroadcastMessage{Code: CodeTimerEvent})
	assert.Eventually(t, broken.isClosed, time.Second, 5*time.Millisecond)

	stop()
	assert.True(t, healthy.isClosed())
	assert.Empty(t, hub.clients)
}

func TestHub_HandleClientMessage(t *testing.T) {
	hub, stop := startHub(t, nil)
	defer stop()

	sender := &fakeConn{}
	other := &fakeConn{}
	hub.register <- sender
	hub.register <- other

	timer := &mockTimer{}
	timer.On("KeyDown", mock.Anything).Return(timerDomain.Snapshot{State: timerDomain.StateRunning}, nil).Once()
	timer.On("KeyDown", mock.Anything).Return(timerDomain.Snapshot{}, errors.New("loop stopped")).Once()

	hub.HandleClientMessage(context.Background(), timer, sender, BroadcastMessage{Code: CodeKeyDown})
	hub.HandleClientMessage(context.Background(), timer, sender, BroadcastMessage{Code: "PING"})
	hub.HandleClientMessage(context.Background(), timer, sender, BroadcastMessage{Code: CodeKeyDown})

	assert.Eventually(t, func() bool {
		return len(sender.codes()) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{CodeTimerSnapshot, CodeError}, sender.codes())

	// a broadcast queued after the replies proves the hub got past them
	hub.Broadcast(BroadcastMessage{Code: CodeTimerEvent})
	assert.Eventually(t, func() bool {
		return len(other.codes()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{CodeTimerEvent}, other.codes())
	timer.AssertExpectations(t)
}
