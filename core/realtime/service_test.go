package realtime_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darasa/backend/core"
	"github.com/darasa/backend/core/realtime"
	"github.com/darasa/backend/core/user"
	"github.com/darasa/backend/storage/inmem"
)

type fakeTimer struct {
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := t.stopped
	t.stopped = true
	return !was
}

// fakeClock records AfterFunc timers so tests can fire expiries by hand.
type fakeClock struct {
	now    time.Time
	timers []*fakeTimer
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) AfterFunc(d time.Duration, f func()) core.Timer {
	t := &fakeTimer{fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) fire() {
	timers := c.timers
	c.timers = nil
	for _, t := range timers {
		if !t.stopped {
			t.stopped = true
			t.fn()
		}
	}
}

type fakeRand struct {
	floats []float64
	ints   []int
}

func (r *fakeRand) Float64() float64 {
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *fakeRand) Intn(n int) int {
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

type fakeNotifier struct {
	titles []string
}

func (n *fakeNotifier) Notify(title, message, typ, priority string) {
	n.titles = append(n.titles, title)
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}

var (
	alice = user.User{ID: "usr-alice", Name: "Alice", Role: user.RoleTeacher}
	bob   = user.User{ID: "usr-bob", Name: "Bob", Role: user.RoleStudent}
)

type fixture struct {
	svc      *realtime.Service
	repo     realtime.Repository
	clock    *fakeClock
	notifier *fakeNotifier
	conf     *core.Config
}

func setup(t *testing.T, rng core.Rand) *fixture {
	t.Helper()

	conf := core.NewConfig()
	db, err := inmem.Open()
	require.NoError(t, err)

	repo := inmem.NewChatRepository(db)
	clock := &fakeClock{now: time.Date(2021, 3, 15, 9, 0, 0, 0, time.UTC)}
	notifier := new(fakeNotifier)

	chat := realtime.Chat{
		ID:   "cht-1",
		Name: "Mathematics",
		Type: realtime.ChatGroup,
		Participants: []realtime.Participant{
			{UserID: alice.ID, Name: alice.Name, Role: alice.Role, Online: true},
			{UserID: bob.ID, Name: bob.Name, Role: bob.Role},
		},
	}
	require.NoError(t, repo.ReplaceAllChats([]realtime.Chat{chat}, nil))

	svc := realtime.NewService(repo, notifier, clock, rng, conf, nopLogger{})
	return &fixture{svc: svc, repo: repo, clock: clock, notifier: notifier, conf: conf}
}

func TestService_SendMessage(t *testing.T) {
	f := setup(t, nil)

	_, err := f.svc.SendMessage(alice, "missing", "hi", "")
	assert.True(t, core.IsNotFound(err))

	var events []realtime.LiveEvent
	unsubscribe := f.svc.Subscribe(realtime.EventMessage, func(ev realtime.LiveEvent) {
		events = append(events, ev)
	})
	defer unsubscribe()

	msg, err := f.svc.SendMessage(alice, "cht-1", "hello class", "")
	require.NoError(t, err)

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, realtime.MessageText, msg.Type)
	assert.Equal(t, alice.ID, msg.SenderID)
	assert.True(t, msg.Delivered)
	assert.False(t, msg.Read)
	assert.Equal(t, f.clock.now, msg.SentAt)

	chats, err := f.svc.Chats()
	require.NoError(t, err)
	require.Len(t, chats, 1)
	require.NotNil(t, chats[0].LastMessage)
	assert.Equal(t, msg.ID, chats[0].LastMessage.ID)
	// the sender's own message never counts against them
	assert.Zero(t, chats[0].UnreadCount)

	require.Len(t, events, 1)
	assert.Equal(t, realtime.EventMessage, events[0].Type)
	assert.Equal(t, "cht-1", events[0].ChatID)
}

func TestService_MarkRead_recounts(t *testing.T) {
	f := setup(t, nil)

	m1, err := f.svc.SendMessage(alice, "cht-1", "one", "")
	require.NoError(t, err)
	_, err = f.svc.SendMessage(alice, "cht-1", "two", "")
	require.NoError(t, err)

	count, err := f.repo.CountUnread("cht-1", bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, f.svc.MarkRead(bob, m1.ID))
	count, err = f.repo.CountUnread("cht-1", bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// marking the same message twice must not drift the recount
	require.NoError(t, f.svc.MarkRead(bob, m1.ID))
	count, err = f.repo.CountUnread("cht-1", bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.True(t, core.IsNotFound(f.svc.MarkRead(bob, "missing")))
}

func TestService_Typing(t *testing.T) {
	f := setup(t, nil)

	assert.True(t, core.IsNotFound(f.svc.StartTyping(alice, "missing")))

	require.NoError(t, f.svc.StartTyping(alice, "cht-1"))
	require.NoError(t, f.svc.StartTyping(bob, "cht-1"))
	assert.Equal(t, []string{alice.ID, bob.ID}, f.svc.TypingUsers("cht-1"))

	f.svc.StopTyping(bob, "cht-1")
	assert.Equal(t, []string{alice.ID}, f.svc.TypingUsers("cht-1"))

	// the remaining indicator expires on its own
	f.clock.fire()
	assert.Empty(t, f.svc.TypingUsers("cht-1"))
}

func TestService_Typing_expiryPublishesEvent(t *testing.T) {
	f := setup(t, nil)

	var events []realtime.LiveEvent
	unsubscribe := f.svc.Subscribe(realtime.EventTyping, func(ev realtime.LiveEvent) {
		events = append(events, ev)
	})
	defer unsubscribe()

	require.NoError(t, f.svc.StartTyping(alice, "cht-1"))
	require.Len(t, events, 1)
	assert.Equal(t, true, events[0].Payload)

	// a timed-out indicator is announced just like an explicit stop
	f.clock.fire()
	require.Len(t, events, 2)
	assert.Equal(t, alice.ID, events[1].UserID)
	assert.Equal(t, false, events[1].Payload)
	assert.Empty(t, f.svc.TypingUsers("cht-1"))

	// the expiry already removed the entry; a late stop stays silent
	f.svc.StopTyping(alice, "cht-1")
	assert.Len(t, events, 2)
}

func TestService_Typing_restartExtendsExpiry(t *testing.T) {
	f := setup(t, nil)

	require.NoError(t, f.svc.StartTyping(alice, "cht-1"))
	first := f.clock.timers[len(f.clock.timers)-1]

	// typing again replaces the pending expiry
	require.NoError(t, f.svc.StartTyping(alice, "cht-1"))
	assert.True(t, first.stopped)
	assert.Equal(t, []string{alice.ID}, f.svc.TypingUsers("cht-1"))
}

func TestService_SubscribeUnsubscribe(t *testing.T) {
	f := setup(t, nil)

	var all, typing int
	unsubAll := f.svc.Subscribe("*", func(realtime.LiveEvent) { all++ })
	unsubTyping := f.svc.Subscribe(realtime.EventTyping, func(realtime.LiveEvent) { typing++ })

	require.NoError(t, f.svc.StartTyping(alice, "cht-1"))
	_, err := f.svc.SendMessage(alice, "cht-1", "hi", "")
	require.NoError(t, err)

	assert.Equal(t, 2, all)
	assert.Equal(t, 1, typing)

	unsubTyping()
	f.svc.StopTyping(alice, "cht-1")
	assert.Equal(t, 3, all)
	assert.Equal(t, 1, typing)

	unsubAll()
	require.NoError(t, f.svc.StartTyping(bob, "cht-1"))
	assert.Equal(t, 3, all)
}

func TestService_Events_ringBuffer(t *testing.T) {
	f := setup(t, nil)

	for i := 0; i < 105; i++ {
		require.NoError(t, f.svc.StartTyping(alice, "cht-1"))
	}

	events := f.svc.Events()
	assert.Len(t, events, 100)
	for _, ev := range events {
		assert.Equal(t, realtime.EventTyping, ev.Type)
	}
}

func TestService_ConnectionLifecycle(t *testing.T) {
	f := setup(t, nil)
	f.conf.Simulator.ReconnectBaseDelay = time.Millisecond
	f.conf.Simulator.ReconnectMaxAttempts = 2

	assert.Equal(t, realtime.StateDisconnected, f.svc.State())

	f.svc.Connect()
	assert.Equal(t, realtime.StateConnected, f.svc.State())

	f.svc.Disconnect()
	assert.Equal(t, realtime.StateDisconnected, f.svc.State())

	// a reconnect sits in the connecting state for its backoff window
	require.NoError(t, f.svc.Reconnect())
	assert.Equal(t, realtime.StateConnecting, f.svc.State())
	f.clock.fire()
	assert.Equal(t, realtime.StateConnected, f.svc.State())

	// a successful connect resets the attempt budget
	f.svc.Disconnect()
	require.NoError(t, f.svc.Reconnect())
	f.clock.fire()
	assert.Equal(t, realtime.StateConnected, f.svc.State())
}

func TestService_Reconnect_capped(t *testing.T) {
	f := setup(t, nil)
	f.conf.Simulator.ReconnectBaseDelay = time.Millisecond
	f.conf.Simulator.ReconnectMaxAttempts = 0

	f.svc.Disconnect()
	err := f.svc.Reconnect()
	require.Error(t, err)
	assert.Equal(t, realtime.StateDisconnected, f.svc.State())
}

func TestBackoff(t *testing.T) {
	base := time.Second
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, realtime.Backoff(base, tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestService_SimulateTick(t *testing.T) {
	// pick chat 0, participant 1 (Bob, offline); flip presence and inject a message
	rng := &fakeRand{floats: []float64{0.0, 0.0}, ints: []int{0, 1}}
	f := setup(t, rng)

	var events []realtime.LiveEvent
	unsubscribe := f.svc.Subscribe("*", func(ev realtime.LiveEvent) { events = append(events, ev) })
	defer unsubscribe()

	f.svc.SimulateTick()

	chats, err := f.svc.Chats()
	require.NoError(t, err)
	require.Len(t, chats, 1)

	var bobP realtime.Participant
	for _, p := range chats[0].Participants {
		if p.UserID == bob.ID {
			bobP = p
		}
	}
	assert.True(t, bobP.Online)

	msgs, err := f.svc.Messages("cht-1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, bob.ID, msgs[0].SenderID)

	assert.Contains(t, f.notifier.titles, "New Message")

	require.Len(t, events, 2)
	assert.Equal(t, realtime.EventPresence, events[0].Type)
	assert.Equal(t, realtime.EventMessage, events[1].Type)
}
