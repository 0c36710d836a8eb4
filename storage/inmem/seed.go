package inmem

import (
	"time"

	"github.com/pkg/errors"

	"github.com/darasa/backend/core/realtime"
	"github.com/darasa/backend/core/school"
	"github.com/darasa/backend/core/session"
	"github.com/darasa/backend/core/user"
)

// Fixed demo ids so cross-collection references line up between seeds.
const (
	seedStudentID    = "usr-demo-student"
	seedTeacherID    = "usr-demo-teacher"
	seedParentID     = "usr-demo-parent"
	seedAdminID      = "usr-demo-admin"
	seedSuperAdminID = "usr-demo-superadmin"

	seedMathCourseID    = "crs-mathematics"
	seedPhysicsCourseID = "crs-physics"

	seedStaffChatID = "cht-staff-room"
	seedClassChatID = "cht-mathematics"
)

// DemoSeeder synthesizes the fixed demo dataset: the five role accounts the
// login directory must expose plus enough school and chat data for every
// dashboard to render.
type DemoSeeder struct{}

func NewDemoSeeder() *DemoSeeder { return &DemoSeeder{} }

var _ school.Seeder = (*DemoSeeder)(nil)

// Users returns the demo directory. All accounts share session.DemoPassword.
func (s *DemoSeeder) Users() ([]user.User, error) {
	now := time.Now().UTC()

	mk := func(id, name, role, grade, dept string) (user.User, error) {
		usr := user.User{
			ID:          id,
			Name:        name,
			Email:       session.DemoAccounts[role],
			Role:        role,
			Permissions: user.DefaultPermissions(role),
			IsActive:    true,
			Grade:       grade,
			Department:  dept,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := usr.SetPassword(session.DemoPassword); err != nil {
			return user.User{}, errors.Wrapf(err, "hashing password for %s", id)
		}
		return usr, nil
	}

	specs := []struct {
		id, name, role, grade, dept string
	}{
		{seedStudentID, "Aisha Mwangi", user.RoleStudent, "10", ""},
		{seedTeacherID, "Juma Otieno", user.RoleTeacher, "", "Mathematics"},
		{seedParentID, "Grace Mwangi", user.RoleParent, "", ""},
		{seedAdminID, "Daniel Kimani", user.RoleAdmin, "", "Administration"},
		{seedSuperAdminID, "Fatma Hassan", user.RoleSuperAdmin, "", "Administration"},
	}

	users := make([]user.User, 0, len(specs))
	for _, sp := range specs {
		usr, err := mk(sp.id, sp.name, sp.role, sp.grade, sp.dept)
		if err != nil {
			return nil, err
		}
		users = append(users, usr)
	}
	return users, nil
}

// SchoolData synthesizes the domain dataset handed to school.Service.Refresh.
func (s *DemoSeeder) SchoolData() school.Dataset {
	now := time.Now().UTC()
	day := 24 * time.Hour

	courses := []school.Course{
		{
			ID:               seedMathCourseID,
			Name:             "Mathematics",
			Code:             "MATH-101",
			TeacherID:        seedTeacherID,
			EnrolledStudents: []string{seedStudentID},
			Schedule: []school.ScheduleSlot{
				{Day: "Monday", StartTime: "08:00", EndTime: "09:30", Room: "A1"},
				{Day: "Wednesday", StartTime: "10:00", EndTime: "11:30", Room: "A1"},
			},
			TotalSeats: 30,
			IsActive:   true,
			CreatedAt:  now.Add(-30 * day),
			UpdatedAt:  now.Add(-30 * day),
		},
		{
			ID:               seedPhysicsCourseID,
			Name:             "Physics",
			Code:             "PHYS-101",
			TeacherID:        seedTeacherID,
			EnrolledStudents: []string{seedStudentID},
			Schedule: []school.ScheduleSlot{
				{Day: "Tuesday", StartTime: "08:00", EndTime: "09:30", Room: "B2"},
			},
			TotalSeats: 25,
			IsActive:   true,
			CreatedAt:  now.Add(-30 * day),
			UpdatedAt:  now.Add(-30 * day),
		},
	}

	assignments := []school.Assignment{
		{
			ID:        "asg-math-sets",
			CourseID:  seedMathCourseID,
			Title:     "Problem Set 3",
			Type:      school.AssignmentHomework,
			Status:    school.StatusPublished,
			DueDate:   now.Add(3 * day),
			MaxScore:  100,
			CreatedAt: now.Add(-7 * day),
			UpdatedAt: now.Add(-7 * day),
		},
		{
			ID:        "asg-phys-lab",
			CourseID:  seedPhysicsCourseID,
			Title:     "Pendulum Lab Report",
			Type:      school.AssignmentProject,
			Status:    school.StatusPublished,
			DueDate:   now.Add(7 * day),
			MaxScore:  50,
			CreatedAt: now.Add(-5 * day),
			UpdatedAt: now.Add(-5 * day),
		},
	}

	grades := []school.Grade{
		{ID: "grd-math-1", StudentID: seedStudentID, CourseID: seedMathCourseID, Score: 80, MaxScore: 100, CreatedAt: now.Add(-10 * day), UpdatedAt: now.Add(-10 * day)},
		{ID: "grd-phys-1", StudentID: seedStudentID, CourseID: seedPhysicsCourseID, Score: 45, MaxScore: 50, CreatedAt: now.Add(-8 * day), UpdatedAt: now.Add(-8 * day)},
	}
	for i := range grades {
		grades[i].Derive()
	}

	attendance := []school.AttendanceRecord{
		{ID: "att-1", StudentID: seedStudentID, CourseID: seedMathCourseID, Date: now.Add(-3 * day), Status: school.AttendancePresent, CreatedAt: now.Add(-3 * day), UpdatedAt: now.Add(-3 * day)},
		{ID: "att-2", StudentID: seedStudentID, CourseID: seedMathCourseID, Date: now.Add(-2 * day), Status: school.AttendancePresent, CreatedAt: now.Add(-2 * day), UpdatedAt: now.Add(-2 * day)},
		{ID: "att-3", StudentID: seedStudentID, CourseID: seedPhysicsCourseID, Date: now.Add(-1 * day), Status: school.AttendanceAbsent, CreatedAt: now.Add(-1 * day), UpdatedAt: now.Add(-1 * day)},
	}

	exams := []school.Exam{
		{ID: "exm-math-mid", CourseID: seedMathCourseID, Title: "Midterm Exam", Date: now.Add(14 * day), Duration: 120, MaxScore: 100, Status: school.ExamScheduled, CreatedAt: now.Add(-7 * day), UpdatedAt: now.Add(-7 * day)},
	}

	events := []school.Event{
		{ID: "evt-ptc", Title: "Parent-Teacher Conference", Description: "Termly progress review", Location: "Main Hall", StartsAt: now.Add(10 * day), EndsAt: now.Add(10*day + 4*time.Hour), CreatedAt: now.Add(-14 * day), UpdatedAt: now.Add(-14 * day)},
	}

	fees := []school.Fee{
		{ID: "fee-term2", StudentID: seedStudentID, Description: "Term 2 Tuition", Amount: 450.00, DueDate: now.Add(21 * day), Status: school.FeePending, CreatedAt: now.Add(-14 * day), UpdatedAt: now.Add(-14 * day)},
	}

	return school.Dataset{
		Courses:     courses,
		Assignments: assignments,
		Grades:      grades,
		Attendance:  attendance,
		Exams:       exams,
		Events:      events,
		Fees:        fees,
	}
}

// ChatData synthesizes the chat threads and their backlogs.
func (s *DemoSeeder) ChatData() ([]realtime.Chat, map[string][]realtime.Message) {
	now := time.Now().UTC()

	backlog := realtime.Message{
		ID:         "msg-welcome",
		ChatID:     seedClassChatID,
		SenderID:   seedTeacherID,
		SenderName: "Juma Otieno",
		SenderRole: user.RoleTeacher,
		Content:    "Welcome to the Mathematics class chat.",
		Type:       realtime.MessageText,
		Delivered:  true,
		SentAt:     now.Add(-time.Hour),
	}

	chats := []realtime.Chat{
		{
			ID:   seedClassChatID,
			Name: "Mathematics 101",
			Type: realtime.ChatGroup,
			Participants: []realtime.Participant{
				{UserID: seedTeacherID, Name: "Juma Otieno", Role: user.RoleTeacher, Online: true, LastSeen: now},
				{UserID: seedStudentID, Name: "Aisha Mwangi", Role: user.RoleStudent, Online: false, LastSeen: now.Add(-2 * time.Hour)},
			},
			LastMessage: &backlog,
			UnreadCount: 1,
			CreatedAt:   now.Add(-30 * 24 * time.Hour),
			UpdatedAt:   now.Add(-time.Hour),
		},
		{
			ID:   seedStaffChatID,
			Name: "Staff Room",
			Type: realtime.ChatGroup,
			Participants: []realtime.Participant{
				{UserID: seedTeacherID, Name: "Juma Otieno", Role: user.RoleTeacher, Online: true, LastSeen: now},
				{UserID: seedAdminID, Name: "Daniel Kimani", Role: user.RoleAdmin, Online: false, LastSeen: now.Add(-time.Hour)},
			},
			CreatedAt: now.Add(-60 * 24 * time.Hour),
			UpdatedAt: now.Add(-24 * time.Hour),
		},
	}

	messages := map[string][]realtime.Message{
		seedClassChatID: {backlog},
	}
	return chats, messages
}

// Seed loads the demo directory and chat threads into the DB. School data is
// loaded separately through school.Service.Refresh so login re-seeds it the
// same way.
func Seed(db *DB, seeder *DemoSeeder) error {
	userRepo := NewUserRepository(db)
	users, err := seeder.Users()
	if err != nil {
		return err
	}
	for _, usr := range users {
		if _, err := userRepo.CreateUser(usr); err != nil {
			return errors.Wrapf(err, "seeding user %s", usr.ID)
		}
	}

	chats, messages := seeder.ChatData()
	if err := NewChatRepository(db).ReplaceAllChats(chats, messages); err != nil {
		return errors.Wrap(err, "seeding chats")
	}
	return nil
}
