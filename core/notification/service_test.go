package notification_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darasa/backend/core"
	"github.com/darasa/backend/core/notification"
	"github.com/darasa/backend/storage/inmem"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) AfterFunc(d time.Duration, f func()) core.Timer { return nopTimer{} }

type nopTimer struct{}

func (nopTimer) Stop() bool { return false }

// fakeRand replays a fixed sequence of samples.
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

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}

func setup(t *testing.T, rng core.Rand) (*notification.Service, *fakeClock) {
	t.Helper()

	conf := core.NewConfig()
	db, err := inmem.Open()
	require.NoError(t, err)

	clock := &fakeClock{now: time.Date(2021, 3, 15, 9, 0, 0, 0, time.UTC)}
	svc := notification.NewService(inmem.NewNotificationRepository(db), clock, rng, conf, nopLogger{})
	return svc, clock
}

func TestService_Add_defaults(t *testing.T) {
	svc, clock := setup(t, nil)

	n, err := svc.Add(notification.NewNotification{Title: "Hello", Message: "world"})
	require.NoError(t, err)

	assert.NotEmpty(t, n.ID)
	assert.Equal(t, notification.TypeSystem, n.Type)
	assert.Equal(t, notification.PriorityMedium, n.Priority)
	assert.False(t, n.Read)
	assert.Equal(t, clock.now, n.CreatedAt)
}

func TestService_List_newestFirst(t *testing.T) {
	svc, clock := setup(t, nil)

	for _, title := range []string{"first", "second", "third"} {
		_, err := svc.Add(notification.NewNotification{Title: title, Message: "m"})
		require.NoError(t, err)
		clock.now = clock.now.Add(time.Minute)
	}

	got, err := svc.List()
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "third", got[0].Title)
	assert.Equal(t, "first", got[2].Title)
}

func TestService_UnreadCount_recounts(t *testing.T) {
	svc, _ := setup(t, nil)

	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		n, err := svc.Add(notification.NewNotification{Title: title, Message: "m"})
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}

	count, err := svc.UnreadCount()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, svc.MarkRead(ids[0]))
	count, err = svc.UnreadCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// marking an already-read id again must not drift the count
	require.NoError(t, svc.MarkRead(ids[0]))
	count, err = svc.UnreadCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, svc.MarkAllRead())
	count, err = svc.UnreadCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestService_Filters_readTime(t *testing.T) {
	svc, _ := setup(t, nil)

	_, err := svc.Add(notification.NewNotification{Title: "g", Message: "m", Type: notification.TypeGrade})
	require.NoError(t, err)
	_, err = svc.Add(notification.NewNotification{Title: "c", Message: "m", Type: notification.TypeCourse})
	require.NoError(t, err)

	svc.SetFilters(notification.Filter{Type: notification.TypeGrade})

	got, err := svc.List()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "g", got[0].Title)

	// filtering is applied at read time: re-listing does not shrink the view
	again, err := svc.List()
	require.NoError(t, err)
	assert.Equal(t, got, again)

	// clearing filters reveals the full set again
	svc.ClearFilters()
	all, err := svc.List()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestService_Filters_targetRole(t *testing.T) {
	svc, _ := setup(t, nil)

	_, err := svc.Add(notification.NewNotification{Title: "staff", Message: "m", TargetRole: "teacher"})
	require.NoError(t, err)
	_, err = svc.Add(notification.NewNotification{Title: "pupils", Message: "m", TargetRole: "student"})
	require.NoError(t, err)
	_, err = svc.Add(notification.NewNotification{Title: "everyone", Message: "m"})
	require.NoError(t, err)

	// a role-scoped view shows that role's alerts plus broadcasts
	svc.SetFilters(notification.Filter{TargetRole: "teacher"})
	got, err := svc.List()
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, n := range got {
		assert.NotEqual(t, "pupils", n.Title)
	}

	svc.ClearFilters()
	all, err := svc.List()
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestService_RemoveClear(t *testing.T) {
	svc, _ := setup(t, nil)

	n, err := svc.Add(notification.NewNotification{Title: "a", Message: "m"})
	require.NoError(t, err)
	_, err = svc.Add(notification.NewNotification{Title: "b", Message: "m"})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(n.ID))
	assert.True(t, core.IsNotFound(svc.Remove(n.ID)))

	require.NoError(t, svc.Clear())
	got, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestService_Sweep(t *testing.T) {
	svc, clock := setup(t, nil)

	past := clock.now.Add(-time.Hour)
	future := clock.now.Add(time.Hour)

	_, err := svc.Add(notification.NewNotification{Title: "expired", Message: "m", ExpiresAt: &past})
	require.NoError(t, err)
	_, err = svc.Add(notification.NewNotification{Title: "alive", Message: "m", ExpiresAt: &future})
	require.NoError(t, err)
	_, err = svc.Add(notification.NewNotification{Title: "forever", Message: "m"})
	require.NoError(t, err)

	removed, err := svc.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	got, err := svc.List()
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, n := range got {
		assert.NotEqual(t, "expired", n.Title)
	}

	// advancing past the remaining expiry sweeps it too
	clock.now = future.Add(time.Minute)
	removed, err = svc.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestService_SimulateTick(t *testing.T) {
	// first tick draws above the probability threshold, second below
	rng := &fakeRand{floats: []float64{0.99, 0.0}, ints: []int{1}}
	svc, _ := setup(t, rng)

	svc.SimulateTick()
	got, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, got)

	svc.SimulateTick()
	got, err = svc.List()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, notification.TypeGrade, got[0].Type)
}
