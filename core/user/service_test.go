package user_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darasa/backend/core"
	"github.com/darasa/backend/core/user"
	"github.com/darasa/backend/storage/inmem"
)

type fakeNotifier struct {
	titles []string
}

func (n *fakeNotifier) Notify(title, message, typ, priority string) {
	n.titles = append(n.titles, title)
}

type fakeMailService struct {
	sent []*core.EmailMessage
}

func (svc *fakeMailService) SendMessages(messages ...*core.EmailMessage) {
	svc.sent = append(svc.sent, messages...)
}

func setup(t *testing.T) (*user.Service, user.Repository, *fakeNotifier) {
	t.Helper()

	db, err := inmem.Open()
	require.NoError(t, err)

	repo := inmem.NewUserRepository(db)
	notifier := new(fakeNotifier)
	svc := user.NewService(repo, notifier, new(fakeMailService), core.NewConfig())
	return svc, repo, notifier
}

func createUser(t *testing.T, repo user.Repository, name, email, role string, isActive bool) user.User {
	t.Helper()

	usr := user.User{
		Name:        name,
		Email:       email,
		Role:        role,
		Permissions: user.DefaultPermissions(role),
		IsActive:    isActive,
	}
	require.NoError(t, usr.SetPassword("t3stpwd"))

	usr, err := repo.CreateUser(usr)
	require.NoError(t, err)
	return usr
}

func TestService_Create(t *testing.T) {
	svc, repo, notifier := setup(t)
	admin := createUser(t, repo, "Admin", "admin@test.test", user.RoleAdmin, true)

	usr, err := svc.Create(admin, user.NewUser{
		Name:     "Aisha Mwangi",
		Email:    "aisha@test.test",
		Role:     user.RoleStudent,
		Grade:    "10",
		Password: "s3cret",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, usr.ID)
	assert.True(t, usr.IsActive)
	assert.Equal(t, user.DefaultPermissions(user.RoleStudent), usr.Permissions)
	assert.NoError(t, usr.CheckPassword("s3cret"))
	assert.Contains(t, notifier.titles, "User Created")

	got, err := svc.GetByEmail("aisha@test.test")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)
}

func TestService_Create_permissionDenied(t *testing.T) {
	svc, repo, notifier := setup(t)
	student := createUser(t, repo, "Student", "student@test.test", user.RoleStudent, true)

	_, err := svc.Create(student, user.NewUser{
		Name:     "Evil Twin",
		Email:    "twin@test.test",
		Role:     user.RoleAdmin,
		Password: "s3cret",
	})
	require.Error(t, err)
	assert.True(t, core.IsPermissionDenied(err))

	// a refused mutation must leave the collection untouched
	users, err := svc.QueryAll()
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Empty(t, notifier.titles)
}

func TestService_Update_returnsSavedState(t *testing.T) {
	svc, repo, _ := setup(t)
	admin := createUser(t, repo, "Admin", "admin@test.test", user.RoleAdmin, true)
	usr := createUser(t, repo, "Juma", "juma@test.test", user.RoleTeacher, true)

	updated, err := svc.Update(admin, usr.ID, user.UpdateUser{Name: "Juma Otieno", Department: "Mathematics"})
	require.NoError(t, err)

	// the returned value reflects the post-mutation record
	assert.Equal(t, "Juma Otieno", updated.Name)
	assert.Equal(t, "Mathematics", updated.Department)
	assert.Equal(t, usr.Email, updated.Email)

	got, err := svc.GetByID(usr.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Name, got.Name)
	assert.Equal(t, updated.Department, got.Department)
}

func TestService_Update_notFound(t *testing.T) {
	svc, repo, _ := setup(t)
	admin := createUser(t, repo, "Admin", "admin@test.test", user.RoleAdmin, true)

	_, err := svc.Update(admin, "nope", user.UpdateUser{Name: "Ghost"})
	require.Error(t, err)
	assert.True(t, core.IsNotFound(err))
}

func TestService_BatchBestEffort(t *testing.T) {
	svc, repo, _ := setup(t)
	admin := createUser(t, repo, "Admin", "admin@test.test", user.RoleAdmin, true)
	u1 := createUser(t, repo, "One", "one@test.test", user.RoleStudent, true)
	u2 := createUser(t, repo, "Two", "two@test.test", user.RoleStudent, true)

	results := svc.Deactivate(admin, u1.ID, "missing", u2.ID)
	require.Len(t, results, 3)

	assert.True(t, results[0].OK())
	assert.False(t, results[1].OK())
	assert.True(t, results[2].OK())

	// a failure partway through leaves the other ids mutated
	for _, id := range []string{u1.ID, u2.ID} {
		got, err := svc.GetByID(id)
		require.NoError(t, err)
		assert.False(t, got.IsActive)
	}
}

func TestService_FilterIdempotent(t *testing.T) {
	svc, repo, _ := setup(t)
	createUser(t, repo, "Aisha Mwangi", "aisha@test.test", user.RoleStudent, true)
	createUser(t, repo, "Juma Otieno", "juma@test.test", user.RoleTeacher, true)
	createUser(t, repo, "Grace Mwangi", "grace@test.test", user.RoleParent, false)

	filter := user.QueryFilter{Role: user.RoleStudent}
	first, err := svc.Filter(filter)
	require.NoError(t, err)
	second, err := svc.Filter(filter)
	require.NoError(t, err)

	// filtering happens at read time; re-applying must not shrink the view
	assert.Equal(t, first, second)
	require.Len(t, first, 1)
	assert.Equal(t, "aisha@test.test", first[0].Email)
}

func TestService_Search(t *testing.T) {
	svc, repo, _ := setup(t)
	createUser(t, repo, "Aisha Mwangi", "aisha@test.test", user.RoleStudent, true)
	createUser(t, repo, "Juma Otieno", "juma@test.test", user.RoleTeacher, true)

	got, err := svc.Search("MWANGI")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Aisha Mwangi", got[0].Name)

	got, err = svc.Search("juma@")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Juma Otieno", got[0].Name)
}

func TestService_Stats(t *testing.T) {
	svc, repo, _ := setup(t)
	createUser(t, repo, "Aisha", "aisha@test.test", user.RoleStudent, true)
	createUser(t, repo, "Brian", "brian@test.test", user.RoleStudent, false)
	createUser(t, repo, "Juma", "juma@test.test", user.RoleTeacher, true)

	stats, err := svc.Stats()
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Active)
	assert.Equal(t, 1, stats.Inactive)
	assert.Equal(t, 2, stats.ByRole[user.RoleStudent])
	assert.Equal(t, 1, stats.ByRole[user.RoleTeacher])
}

func TestService_Delete(t *testing.T) {
	svc, repo, notifier := setup(t)
	admin := createUser(t, repo, "Admin", "admin@test.test", user.RoleAdmin, true)
	usr := createUser(t, repo, "Gone", "gone@test.test", user.RoleStudent, true)

	require.NoError(t, svc.Delete(admin, usr.ID))
	assert.Contains(t, notifier.titles, "User Deleted")

	_, err := svc.GetByID(usr.ID)
	assert.True(t, core.IsNotFound(err))

	err = svc.Delete(admin, usr.ID)
	assert.True(t, core.IsNotFound(err))
}

func TestUser_HasPermission(t *testing.T) {
	tests := []struct {
		name       string
		usr        user.User
		capability string
		want       bool
	}{
		{"match", user.User{Permissions: []string{user.PermViewGrades}}, user.PermViewGrades, true},
		{"no match", user.User{Permissions: []string{user.PermViewGrades}}, user.PermManageUsers, false},
		{"wildcard", user.User{Permissions: []string{user.PermWildcard}}, user.PermManageUsers, true},
		{"empty", user.User{}, user.PermViewGrades, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.usr.HasPermission(tt.capability))
		})
	}
}
