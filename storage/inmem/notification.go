package inmem

import (
	"time"

	"github.com/darasa/backend/core/notification"
)

type notificationRepository struct {
	db *notificationTable
}

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{db: db.notification}
}

// InsertNotification prepends so the list stays newest-first.
func (repo *notificationRepository) InsertNotification(n notification.Notification) (notification.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.list = append([]notification.Notification{n}, repo.db.list...)
	return n, nil
}

func (repo *notificationRepository) QueryNotifications() ([]notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	out := make([]notification.Notification, len(repo.db.list))
	copy(out, repo.db.list)
	return out, nil
}

func (repo *notificationRepository) MarkNotificationsRead(ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for i := range repo.db.list {
		for _, id := range ids {
			if repo.db.list[i].ID == id {
				repo.db.list[i].Read = true
			}
		}
	}
	return nil
}

func (repo *notificationRepository) MarkAllNotificationsRead() error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for i := range repo.db.list {
		repo.db.list[i].Read = true
	}
	return nil
}

func (repo *notificationRepository) DeleteNotification(id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for i, n := range repo.db.list {
		if n.ID == id {
			repo.db.list = append(repo.db.list[:i], repo.db.list[i+1:]...)
			return nil
		}
	}
	return notification.ErrNotFound
}

func (repo *notificationRepository) ClearNotifications() error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.list = nil
	return nil
}

func (repo *notificationRepository) DeleteExpiredNotifications(now time.Time) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	kept := repo.db.list[:0]
	var removed int
	for _, n := range repo.db.list {
		if n.Expired(now) {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	repo.db.list = kept
	return removed, nil
}
