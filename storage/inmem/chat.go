package inmem

import (
	"time"

	"github.com/darasa/backend/core/realtime"
)

type chatRepository struct {
	db *chatTable
}

func NewChatRepository(db *DB) realtime.Repository {
	return &chatRepository{db: db.chat}
}

func (repo *chatRepository) QueryChats() ([]realtime.Chat, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	out := make([]realtime.Chat, 0, len(repo.db.chats))
	for _, c := range repo.db.chats {
		out = append(out, *c)
	}
	return out, nil
}

func (repo *chatRepository) GetChatByID(id string) (realtime.Chat, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.chats[id]; ok {
		return *c, nil
	}
	return realtime.Chat{}, realtime.ErrChatNotFound
}

func (repo *chatRepository) UpdateChat(c realtime.Chat) (realtime.Chat, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.chats[c.ID]; !ok {
		return realtime.Chat{}, realtime.ErrChatNotFound
	}
	repo.db.chats[c.ID] = &c
	return c, nil
}

func (repo *chatRepository) QueryMessages(chatID string) ([]realtime.Message, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	msgs := repo.db.messages[chatID]
	out := make([]realtime.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (repo *chatRepository) GetMessageByID(id string) (realtime.Message, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, msgs := range repo.db.messages {
		for _, m := range msgs {
			if m.ID == id {
				return m, nil
			}
		}
	}
	return realtime.Message{}, realtime.ErrMessageNotFound
}

func (repo *chatRepository) InsertMessage(m realtime.Message) (realtime.Message, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.chats[m.ChatID]; !ok {
		return realtime.Message{}, realtime.ErrChatNotFound
	}
	repo.db.messages[m.ChatID] = append(repo.db.messages[m.ChatID], m)
	return m, nil
}

func (repo *chatRepository) UpdateMessage(m realtime.Message) (realtime.Message, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	msgs := repo.db.messages[m.ChatID]
	for i := range msgs {
		if msgs[i].ID == m.ID {
			msgs[i] = m
			return m, nil
		}
	}
	return realtime.Message{}, realtime.ErrMessageNotFound
}

func (repo *chatRepository) CountUnread(chatID, excludeSenderID string) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, m := range repo.db.messages[chatID] {
		if !m.Read && m.SenderID != excludeSenderID {
			count++
		}
	}
	return count, nil
}

func (repo *chatRepository) SetUserPresence(userID string, online bool, at time.Time) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, c := range repo.db.chats {
		for i := range c.Participants {
			if c.Participants[i].UserID == userID {
				c.Participants[i].Online = online
				c.Participants[i].LastSeen = at
			}
		}
	}
	return nil
}

func (repo *chatRepository) ReplaceAllChats(chats []realtime.Chat, messages map[string][]realtime.Message) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.chats = make(map[string]*realtime.Chat, len(chats))
	for i := range chats {
		c := chats[i]
		repo.db.chats[c.ID] = &c
	}
	repo.db.messages = make(map[string][]realtime.Message, len(messages))
	for chatID, msgs := range messages {
		out := make([]realtime.Message, len(msgs))
		copy(out, msgs)
		repo.db.messages[chatID] = out
	}
	return nil
}
