package realtime

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/darasa/backend/core"
	"github.com/darasa/backend/core/user"
)

var (
	ErrChatNotFound    = core.NewNotFoundError("chat")
	ErrMessageNotFound = core.NewNotFoundError("message")
)

// eventBufferSize bounds the live-event ring buffer.
const eventBufferSize = 100

type (
	Repository interface {
		QueryChats() ([]Chat, error)
		GetChatByID(id string) (Chat, error)
		UpdateChat(c Chat) (Chat, error)
		QueryMessages(chatID string) ([]Message, error)
		GetMessageByID(id string) (Message, error)
		InsertMessage(m Message) (Message, error)
		UpdateMessage(m Message) (Message, error)
		// CountUnread counts unread messages in a chat not authored by the
		// given sender.
		CountUnread(chatID, excludeSenderID string) (int, error)
		SetUserPresence(userID string, online bool, at time.Time) error
		ReplaceAllChats(chats []Chat, messages map[string][]Message) error
	}

	// Notifier receives in-app alerts for synthesized inbound messages.
	Notifier interface {
		Notify(title, message, typ, priority string)
	}

	Service struct {
		repo     Repository
		notifier Notifier
		clock    core.Clock
		rng      core.Rand
		conf     *core.Config
		logger   core.Logger

		mu         sync.Mutex
		typing     map[string]map[string]core.Timer // chatID → userID → expiry timer
		subs       map[string]map[int]func(LiveEvent)
		nextSubID  int
		events     []LiveEvent
		connState  string
		reconnects int
	}
)

func NewService(repo Repository, notifier Notifier, clock core.Clock, rng core.Rand, conf *core.Config, logger core.Logger) *Service {
	return &Service{
		repo:      repo,
		notifier:  notifier,
		clock:     clock,
		rng:       rng,
		conf:      conf,
		logger:    logger,
		typing:    make(map[string]map[string]core.Timer),
		subs:      make(map[string]map[int]func(LiveEvent)),
		connState: StateDisconnected,
	}
}

// Chats returns all chats, most recently updated first.
func (svc *Service) Chats() ([]Chat, error) {
	chats, err := svc.repo.QueryChats()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(chats, func(i, j int) bool { return chats[i].UpdatedAt.After(chats[j].UpdatedAt) })
	return chats, nil
}

func (svc *Service) Messages(chatID string) ([]Message, error) {
	if _, err := svc.repo.GetChatByID(chatID); err != nil {
		return nil, err
	}
	return svc.repo.QueryMessages(chatID)
}

// SendMessage appends a message to an existing chat, stamping the sender from
// the acting principal and advancing the chat's last-message pointer.
func (svc *Service) SendMessage(sender user.User, chatID, content, msgType string, attachments ...Attachment) (Message, error) {
	chat, err := svc.repo.GetChatByID(chatID)
	if err != nil {
		return Message{}, err
	}
	if msgType == "" {
		msgType = MessageText
	}

	now := svc.clock.Now().UTC()
	msg := Message{
		ID:          uuid.New().String(),
		ChatID:      chatID,
		SenderID:    sender.ID,
		SenderName:  sender.Name,
		SenderRole:  sender.Role,
		Content:     content,
		Type:        msgType,
		Attachments: attachments,
		Delivered:   true,
		SentAt:      now,
	}
	msg, err = svc.repo.InsertMessage(msg)
	if err != nil {
		return Message{}, err
	}

	chat.LastMessage = &msg
	chat.UpdatedAt = now
	if chat.UnreadCount, err = svc.repo.CountUnread(chatID, sender.ID); err != nil {
		return Message{}, err
	}
	if _, err = svc.repo.UpdateChat(chat); err != nil {
		return Message{}, err
	}

	svc.publish(LiveEvent{Type: EventMessage, ChatID: chatID, UserID: sender.ID, Payload: msg})
	return msg, nil
}

// MarkRead flips a message's read flag and recomputes the owning chat's
// unread counter as the count of unread messages not authored by the
// principal. Always a recount, never an increment.
func (svc *Service) MarkRead(principal user.User, messageID string) error {
	msg, err := svc.repo.GetMessageByID(messageID)
	if err != nil {
		return err
	}
	msg.Read = true
	if _, err = svc.repo.UpdateMessage(msg); err != nil {
		return err
	}

	chat, err := svc.repo.GetChatByID(msg.ChatID)
	if err != nil {
		return err
	}
	if chat.UnreadCount, err = svc.repo.CountUnread(chat.ID, principal.ID); err != nil {
		return err
	}
	_, err = svc.repo.UpdateChat(chat)
	return err
}

// Typing indicators

// StartTyping adds the principal to the chat's typing set; the entry
// auto-expires after the configured timeout unless explicitly stopped.
func (svc *Service) StartTyping(principal user.User, chatID string) error {
	if _, err := svc.repo.GetChatByID(chatID); err != nil {
		return err
	}

	svc.mu.Lock()
	set, ok := svc.typing[chatID]
	if !ok {
		set = make(map[string]core.Timer)
		svc.typing[chatID] = set
	}
	if timer, ok := set[principal.ID]; ok {
		timer.Stop()
	}
	userID := principal.ID
	set[userID] = svc.clock.AfterFunc(svc.conf.Simulator.TypingExpiry, func() {
		// expiry is announced the same way an explicit stop is
		if svc.stopTyping(chatID, userID) {
			svc.publish(LiveEvent{Type: EventTyping, ChatID: chatID, UserID: userID, Payload: false})
		}
	})
	svc.mu.Unlock()

	svc.publish(LiveEvent{Type: EventTyping, ChatID: chatID, UserID: principal.ID, Payload: true})
	return nil
}

func (svc *Service) StopTyping(principal user.User, chatID string) {
	if svc.stopTyping(chatID, principal.ID) {
		svc.publish(LiveEvent{Type: EventTyping, ChatID: chatID, UserID: principal.ID, Payload: false})
	}
}

// stopTyping reports whether the user was actually removed so a raced stop
// and expiry cannot announce the same removal twice.
func (svc *Service) stopTyping(chatID, userID string) bool {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if set, ok := svc.typing[chatID]; ok {
		if timer, ok := set[userID]; ok {
			timer.Stop()
			delete(set, userID)
			return true
		}
	}
	return false
}

// TypingUsers returns the ids currently typing in a chat, sorted.
func (svc *Service) TypingUsers(chatID string) []string {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	set := svc.typing[chatID]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Publish/subscribe

// Subscribe registers a callback for an event type ("*" observes all) and
// returns its unsubscribe function.
func (svc *Service) Subscribe(eventType string, fn func(LiveEvent)) func() {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	svc.nextSubID++
	id := svc.nextSubID
	set, ok := svc.subs[eventType]
	if !ok {
		set = make(map[int]func(LiveEvent))
		svc.subs[eventType] = set
	}
	set[id] = fn

	return func() {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		delete(svc.subs[eventType], id)
	}
}

// Events returns a copy of the live-event ring buffer (most recent last,
// bounded at 100 entries).
func (svc *Service) Events() []LiveEvent {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	out := make([]LiveEvent, len(svc.events))
	copy(out, svc.events)
	return out
}

func (svc *Service) publish(ev LiveEvent) {
	ev.ID = uuid.New().String()
	ev.OccurredAt = svc.clock.Now().UTC()

	svc.mu.Lock()
	svc.events = append(svc.events, ev)
	if len(svc.events) > eventBufferSize {
		svc.events = svc.events[len(svc.events)-eventBufferSize:]
	}
	fns := make([]func(LiveEvent), 0, len(svc.subs[ev.Type])+len(svc.subs["*"]))
	for _, fn := range svc.subs[ev.Type] {
		fns = append(fns, fn)
	}
	for _, fn := range svc.subs["*"] {
		fns = append(fns, fn)
	}
	svc.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Connection state machine. There is no real transport behind it; it models
// the disconnected → connecting → connected lifecycle the clients observe.

func (svc *Service) Connect() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	// no real transport to dial; connecting is only entered for the backoff
	// window of a reconnect attempt
	svc.connState = StateConnected
	svc.reconnects = 0
}

func (svc *Service) Disconnect() {
	svc.mu.Lock()
	svc.connState = StateDisconnected
	svc.mu.Unlock()
}

// Reconnect schedules a (simulated) connection retry with exponential backoff
// up to the configured attempt cap. The service sits in the connecting state
// for the backoff window, then flips to connected.
func (svc *Service) Reconnect() error {
	svc.mu.Lock()
	if svc.reconnects >= svc.conf.Simulator.ReconnectMaxAttempts {
		svc.mu.Unlock()
		return fmt.Errorf("reconnect failed after %d attempts", svc.reconnects)
	}
	svc.reconnects++
	attempt := svc.reconnects
	svc.connState = StateConnecting
	svc.mu.Unlock()

	svc.clock.AfterFunc(Backoff(svc.conf.Simulator.ReconnectBaseDelay, attempt), svc.Connect)
	return nil
}

func (svc *Service) State() string {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.connState
}

// Backoff returns the delay before the given 1-based reconnect attempt:
// base × 2^(attempt-1).
func Backoff(base time.Duration, attempt int) time.Duration {
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
	}
	return d
}

// SimulateTick randomly flips a participant's presence and occasionally
// synthesizes an inbound message. Exposed so tests can drive ticks
// deterministically.
func (svc *Service) SimulateTick() {
	chats, err := svc.repo.QueryChats()
	if err != nil || len(chats) == 0 {
		return
	}
	chat := chats[svc.rng.Intn(len(chats))]
	if len(chat.Participants) == 0 {
		return
	}
	p := chat.Participants[svc.rng.Intn(len(chat.Participants))]

	if svc.rng.Float64() < svc.conf.Simulator.PresenceProbability {
		now := svc.clock.Now().UTC()
		if err := svc.repo.SetUserPresence(p.UserID, !p.Online, now); err != nil {
			svc.logger.Error(fmt.Sprintf("flipping presence: %v", err), err)
		} else {
			svc.publish(LiveEvent{Type: EventPresence, ChatID: chat.ID, UserID: p.UserID, Payload: !p.Online})
		}
	}

	if svc.rng.Float64() < svc.conf.Simulator.MessageProbability {
		sender := user.User{ID: p.UserID, Name: p.Name, Role: p.Role}
		if _, err := svc.SendMessage(sender, chat.ID, "Hey, do you have a minute?", MessageText); err != nil {
			svc.logger.Error(fmt.Sprintf("injecting message: %v", err), err)
			return
		}
		svc.notifier.Notify("New Message", fmt.Sprintf("%s sent a message in %s", p.Name, chat.Name), "message", "medium")
	}
}

// Run drives the presence/message simulator until ctx is cancelled.
func (svc *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(svc.conf.Simulator.PresencePeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.SimulateTick()
		}
	}
}
