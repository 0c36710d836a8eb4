package notification

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/darasa/backend/core"
)

var ErrNotFound = core.NewNotFoundError("notification")

type (
	Repository interface {
		InsertNotification(n Notification) (Notification, error)
		QueryNotifications() ([]Notification, error)
		MarkNotificationsRead(ids ...string) error
		MarkAllNotificationsRead() error
		DeleteNotification(id string) error
		ClearNotifications() error
		DeleteExpiredNotifications(now time.Time) (int, error)
	}

	Service struct {
		repo   Repository
		clock  core.Clock
		rng    core.Rand
		conf   *core.Config
		logger core.Logger

		mu      sync.RWMutex // guards filters
		filters Filter
	}
)

func NewService(repo Repository, clock core.Clock, rng core.Rand, conf *core.Config, logger core.Logger) *Service {
	return &Service{
		repo:   repo,
		clock:  clock,
		rng:    rng,
		conf:   conf,
		logger: logger,
	}
}

// Add stores a notification with a synthesized id and creation timestamp.
func (svc *Service) Add(nn NewNotification) (Notification, error) {
	typ := nn.Type
	if typ == "" {
		typ = TypeSystem
	}
	priority := nn.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	n := Notification{
		ID:         uuid.New().String(),
		Title:      nn.Title,
		Message:    nn.Message,
		Type:       typ,
		Priority:   priority,
		Read:       nn.Read,
		TargetRole: nn.TargetRole,
		CreatedAt:  svc.clock.Now().UTC(),
		ExpiresAt:  nn.ExpiresAt,
		Actions:    nn.Actions,
	}
	return svc.repo.InsertNotification(n)
}

// Notify is the fire-and-forget side-effect channel used by the other stores.
func (svc *Service) Notify(title, message, typ, priority string) {
	if _, err := svc.Add(NewNotification{
		Title:    title,
		Message:  message,
		Type:     typ,
		Priority: priority,
	}); err != nil {
		svc.logger.Error(fmt.Sprintf("adding notification: %v", err), err)
	}
}

// List returns the current view: newest first, narrowed by the active
// filters. Filtering happens at read time so clearing filters always reveals
// the full set.
func (svc *Service) List() ([]Notification, error) {
	all, err := svc.repo.QueryNotifications()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	svc.mu.RLock()
	filters := svc.filters
	svc.mu.RUnlock()
	if filters.IsEmpty() {
		return all, nil
	}

	out := make([]Notification, 0, len(all))
	for _, n := range all {
		if filters.Match(n) {
			out = append(out, n)
		}
	}
	return out, nil
}

// UnreadCount is always a full recount from the read flags, never an
// incrementally maintained counter.
func (svc *Service) UnreadCount() (int, error) {
	all, err := svc.repo.QueryNotifications()
	if err != nil {
		return 0, err
	}
	var count int
	for _, n := range all {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

func (svc *Service) MarkRead(ids ...string) error {
	return svc.repo.MarkNotificationsRead(ids...)
}

func (svc *Service) MarkAllRead() error {
	return svc.repo.MarkAllNotificationsRead()
}

func (svc *Service) Remove(id string) error {
	return svc.repo.DeleteNotification(id)
}

func (svc *Service) Clear() error {
	return svc.repo.ClearNotifications()
}

func (svc *Service) SetFilters(f Filter) {
	svc.mu.Lock()
	svc.filters = f
	svc.mu.Unlock()
}

func (svc *Service) ClearFilters() {
	svc.SetFilters(Filter{})
}

func (svc *Service) Filters() Filter {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.filters
}

// Sweep removes notifications whose expiry has passed and returns the number
// removed.
func (svc *Service) Sweep() (int, error) {
	return svc.repo.DeleteExpiredNotifications(svc.clock.Now().UTC())
}

// SimulateTick injects a synthetic notification with the configured
// probability. Exposed so tests can drive ticks deterministically.
func (svc *Service) SimulateTick() {
	if svc.rng.Float64() >= svc.conf.Simulator.NotificationProbability {
		return
	}
	samples := []NewNotification{
		{Title: "Assignment Due Soon", Message: "Math homework is due tomorrow", Type: TypeCourse, Priority: PriorityHigh},
		{Title: "New Grade Posted", Message: "A new grade was posted to your record", Type: TypeGrade, Priority: PriorityMedium},
		{Title: "School Event", Message: "Parent-teacher conferences start next week", Type: TypeEvent, Priority: PriorityLow},
	}
	nn := samples[svc.rng.Intn(len(samples))]
	if _, err := svc.Add(nn); err != nil {
		svc.logger.Error(fmt.Sprintf("injecting notification: %v", err), err)
	}
}

// Run drives the expiry sweep and the random injector until ctx is cancelled.
func (svc *Service) Run(ctx context.Context) {
	sweep := time.NewTicker(svc.conf.Simulator.SweepPeriod)
	defer sweep.Stop()
	inject := time.NewTicker(svc.conf.Simulator.NotificationPeriod)
	defer inject.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sweep.C:
			if _, err := svc.Sweep(); err != nil {
				svc.logger.Error(fmt.Sprintf("sweeping notifications: %v", err), err)
			}
		case <-inject.C:
			svc.SimulateTick()
		}
	}
}
