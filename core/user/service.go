package user

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/darasa/backend/core"
)

var (
	// errors
	ErrNotFound    = core.NewNotFoundError("user")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(email string, excludedUsers ...User) error
		CreateUser(usr User) (User, error)
		QueryAllUsers() ([]User, error)
		GetUserByID(id string) (User, error)
		GetUserByEmail(email string) (User, error)
		// FilterUsers applies AND operation on available QueryFilter fields.
		FilterUsers(filter QueryFilter) ([]User, error)
		// UpdateUser persists the set fields of usr and returns the stored
		// post-mutation record.
		UpdateUser(usr User, isActive *bool) (User, error)
		DeleteUsersByID(ids ...string) error
	}

	// Notifier receives in-app alerts raised as directory mutation side effects.
	Notifier interface {
		Notify(title, message, typ, priority string)
	}

	Service struct {
		repo     Repository
		notifier Notifier
		mailSvc  core.EmailService
		conf     *core.Config
	}
)

func NewService(repo Repository, notifier Notifier, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		mailSvc:  mailSvc,
		conf:     conf,
	}
}

func (svc *Service) CheckEmailUniqueness(email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(email, exclUsers...); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// requirePermission gates every directory mutation on the acting principal.
func requirePermission(actor User, capability string) error {
	if !actor.HasPermission(capability) {
		return core.NewPermissionError(capability)
	}
	return nil
}

func (svc *Service) Create(actor User, nu NewUser) (User, error) {
	if err := requirePermission(actor, PermManageUsers); err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	usr := User{
		Name:       nu.Name,
		Email:      nu.Email,
		Phone:      nu.Phone,
		Role:       nu.Role,
		Grade:      nu.Grade,
		Department: nu.Department,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if nu.Permissions != nil {
		usr.Permissions = nu.Permissions
	} else {
		usr.Permissions = DefaultPermissions(nu.Role)
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}

	usr, err := svc.repo.CreateUser(usr)
	if err != nil {
		return User{}, err
	}

	svc.notifier.Notify(
		"User Created",
		fmt.Sprintf("%s (%s) was added to the directory", usr.Name, usr.Role),
		"user", "low",
	)
	svc.sendWelcomeEmail(usr)
	return usr, nil
}

func (svc *Service) QueryAll() ([]User, error) {
	return svc.repo.QueryAllUsers()
}

func (svc *Service) GetByID(id string) (User, error) {
	return svc.repo.GetUserByID(id)
}

func (svc *Service) GetByEmail(email string) (User, error) {
	return svc.repo.GetUserByEmail(core.CleanString(email, true /* lower */))
}

func (svc *Service) GetByRole(role string) ([]User, error) {
	return svc.repo.FilterUsers(QueryFilter{Role: core.CleanString(role, true /* lower */)})
}

func (svc *Service) Filter(filter QueryFilter) ([]User, error) {
	filter.Clean()
	return svc.repo.FilterUsers(filter)
}

// Search does a case-insensitive substring match on name, email or phone.
func (svc *Service) Search(term string) ([]User, error) {
	return svc.Filter(QueryFilter{Search: term})
}

// Update modifies an existing user. The returned record is read back from the
// post-mutation state, never assembled from the pre-mutation snapshot.
func (svc *Service) Update(actor User, id string, uu UpdateUser) (User, error) {
	if err := requirePermission(actor, PermManageUsers); err != nil {
		return User{}, err
	}
	orig, err := svc.repo.GetUserByID(id)
	if err != nil {
		return User{}, err
	}

	usr := User{
		ID:          id,
		Name:        uu.Name,
		Email:       uu.Email,
		Phone:       uu.Phone,
		Role:        uu.Role,
		Permissions: uu.Permissions,
		Grade:       uu.Grade,
		Department:  uu.Department,
		UpdatedAt:   time.Now().UTC(),
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, errors.Wrap(err, "setting password")
		}
	}

	usr, err = svc.repo.UpdateUser(usr, uu.IsActive)
	if err != nil {
		return User{}, err
	}

	svc.notifier.Notify(
		"User Updated",
		fmt.Sprintf("%s's record was updated", orig.Name),
		"user", "low",
	)
	return usr, nil
}

func (svc *Service) Delete(actor User, id string) error {
	if err := requirePermission(actor, PermManageUsers); err != nil {
		return err
	}
	usr, err := svc.repo.GetUserByID(id)
	if err != nil {
		return err
	}
	if err := svc.repo.DeleteUsersByID(id); err != nil {
		return err
	}

	svc.notifier.Notify(
		"User Deleted",
		fmt.Sprintf("%s was removed from the directory", usr.Name),
		"user", "medium",
	)
	return nil
}

// Batch operations apply the single-entity operation per id, sequentially and
// best-effort: a failure partway through leaves earlier ids mutated.

func (svc *Service) Activate(actor User, ids ...string) []BatchResult {
	return svc.batchSetActive(actor, true, ids)
}

func (svc *Service) Deactivate(actor User, ids ...string) []BatchResult {
	return svc.batchSetActive(actor, false, ids)
}

func (svc *Service) batchSetActive(actor User, active bool, ids []string) []BatchResult {
	results := make([]BatchResult, 0, len(ids))
	for _, id := range ids {
		res := BatchResult{ID: id}
		_, err := svc.Update(actor, id, UpdateUser{IsActive: &active})
		if err != nil {
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results
}

func (svc *Service) DeleteMany(actor User, ids ...string) []BatchResult {
	results := make([]BatchResult, 0, len(ids))
	for _, id := range ids {
		res := BatchResult{ID: id}
		if err := svc.Delete(actor, id); err != nil {
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results
}

// Stats recomputes the directory aggregate from the full collection.
func (svc *Service) Stats() (Stats, error) {
	users, err := svc.repo.QueryAllUsers()
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		ByRole:       make(map[string]int),
		ByGrade:      make(map[string]int),
		ByDepartment: make(map[string]int),
	}
	for _, usr := range users {
		stats.Total++
		if usr.IsActive {
			stats.Active++
		} else {
			stats.Inactive++
		}
		stats.ByRole[usr.Role]++
		if usr.IsStudent() && usr.Grade != "" {
			stats.ByGrade[usr.Grade]++
		}
		if (usr.IsTeacher() || usr.IsAdmin()) && usr.Department != "" {
			stats.ByDepartment[usr.Department]++
		}
	}
	return stats, nil
}

func (svc *Service) SetLastLogin(usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(User{
		ID:        usr.ID,
		Name:      usr.Name,
		Email:     usr.Email,
		Phone:     usr.Phone,
		LastLogin: usr.LastLogin,
		UpdatedAt: usr.UpdatedAt,
	}, nil)
}

func (svc *Service) sendWelcomeEmail(usr User) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: "Welcome to " + svc.conf.AppName,
		BodyStr: fmt.Sprintf(
			"Hi %s,\n\nAn account was created for you on %s.\nSign in at %s with your email address.\n",
			usr.Name, svc.conf.AppName, svc.conf.FrontendBaseURL,
		),
	})
}
