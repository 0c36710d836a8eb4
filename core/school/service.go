package school

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/darasa/backend/core"
	"github.com/darasa/backend/core/user"
)

var (
	ErrCourseNotFound  = core.NewNotFoundError("course")
	ErrStudentNotFound = core.NewNotFoundError("student")
)

type (
	// Dataset is a full snapshot of every domain collection; Refresh swaps
	// the store's contents for a freshly seeded one.
	Dataset struct {
		Courses     []Course
		Assignments []Assignment
		Grades      []Grade
		Attendance  []AttendanceRecord
		Exams       []Exam
		Events      []Event
		Fees        []Fee
	}

	// Seeder synthesizes a mock dataset; the demo seeder lives in storage.
	Seeder interface {
		SchoolData() Dataset
	}

	Repository interface {
		QueryCourses(filter CourseFilter) ([]Course, error)
		CreateCourse(c Course) (Course, error)
		QueryAssignments(filter AssignmentFilter) ([]Assignment, error)
		CreateAssignment(a Assignment) (Assignment, error)
		QueryGrades(filter GradeFilter) ([]Grade, error)
		CreateGrade(g Grade) (Grade, error)
		QueryAttendance(filter AttendanceFilter) ([]AttendanceRecord, error)
		CreateAttendanceRecord(r AttendanceRecord) (AttendanceRecord, error)
		QueryExams(filter ExamFilter) ([]Exam, error)
		CreateExam(e Exam) (Exam, error)
		QueryEvents(filter EventFilter) ([]Event, error)
		CreateEvent(e Event) (Event, error)
		QueryFees(filter FeeFilter) ([]Fee, error)
		CreateFee(f Fee) (Fee, error)
		// ReplaceAll atomically swaps every collection for the dataset.
		ReplaceAll(ds Dataset) error
	}

	// Directory resolves user references; satisfied by user.Service.
	Directory interface {
		GetByID(id string) (user.User, error)
	}

	// Notifier receives in-app alerts raised as mutation side effects.
	Notifier interface {
		Notify(title, message, typ, priority string)
	}

	Service struct {
		repo      Repository
		directory Directory
		notifier  Notifier
		seeder    Seeder
		clock     core.Clock
	}
)

func NewService(repo Repository, directory Directory, notifier Notifier, seeder Seeder, clock core.Clock) *Service {
	return &Service{
		repo:      repo,
		directory: directory,
		notifier:  notifier,
		seeder:    seeder,
		clock:     clock,
	}
}

// Courses

func (svc *Service) Courses(filter CourseFilter) ([]Course, error) {
	return svc.repo.QueryCourses(filter)
}

func (svc *Service) CreateCourse(nc NewCourse) (Course, error) {
	now := svc.clock.Now().UTC()
	c := Course{
		ID:               uuid.New().String(),
		Name:             nc.Name,
		Code:             nc.Code,
		TeacherID:        nc.TeacherID,
		EnrolledStudents: nc.EnrolledStudents,
		Schedule:         nc.Schedule,
		TotalSeats:       nc.TotalSeats,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	c, err := svc.repo.CreateCourse(c)
	if err != nil {
		return Course{}, err
	}
	svc.notifier.Notify("Course Created", fmt.Sprintf("%s (%s) is now available", c.Name, c.Code), "course", "medium")
	return c, nil
}

// UpdateCourse and DeleteCourse are declared but deliberately unimplemented;
// the current product keeps domain entities append-only.
func (svc *Service) UpdateCourse(id string, _ NewCourse) (Course, error) {
	return Course{}, core.NewNotImplementedError("course update")
}

func (svc *Service) DeleteCourse(id string) error {
	return core.NewNotImplementedError("course deletion")
}

// Assignments

func (svc *Service) Assignments(filter AssignmentFilter) ([]Assignment, error) {
	return svc.repo.QueryAssignments(filter)
}

func (svc *Service) CreateAssignment(na NewAssignment) (Assignment, error) {
	now := svc.clock.Now().UTC()
	status := na.Status
	if status == "" {
		status = StatusDraft
	}
	a := Assignment{
		ID:        uuid.New().String(),
		CourseID:  na.CourseID,
		Title:     na.Title,
		Type:      na.Type,
		Status:    status,
		DueDate:   na.DueDate,
		MaxScore:  na.MaxScore,
		CreatedAt: now,
		UpdatedAt: now,
	}
	a, err := svc.repo.CreateAssignment(a)
	if err != nil {
		return Assignment{}, err
	}
	svc.notifier.Notify("Assignment Created", fmt.Sprintf("%q was added", a.Title), "course", "medium")
	return a, nil
}

func (svc *Service) UpdateAssignment(id string, _ NewAssignment) (Assignment, error) {
	return Assignment{}, core.NewNotImplementedError("assignment update")
}

func (svc *Service) DeleteAssignment(id string) error {
	return core.NewNotImplementedError("assignment deletion")
}

// Grades

func (svc *Service) Grades(filter GradeFilter) ([]Grade, error) {
	return svc.repo.QueryGrades(filter)
}

func (svc *Service) CreateGrade(ng NewGrade) (Grade, error) {
	now := svc.clock.Now().UTC()
	g := Grade{
		ID:        uuid.New().String(),
		StudentID: ng.StudentID,
		CourseID:  ng.CourseID,
		Score:     ng.Score,
		MaxScore:  ng.MaxScore,
		CreatedAt: now,
		UpdatedAt: now,
	}
	g.Derive()
	g, err := svc.repo.CreateGrade(g)
	if err != nil {
		return Grade{}, err
	}
	svc.notifier.Notify("Grade Posted", fmt.Sprintf("A %s grade was posted", g.Letter), "grade", "medium")
	return g, nil
}

// Attendance

func (svc *Service) Attendance(filter AttendanceFilter) ([]AttendanceRecord, error) {
	return svc.repo.QueryAttendance(filter)
}

func (svc *Service) CreateAttendanceRecord(na NewAttendanceRecord) (AttendanceRecord, error) {
	now := svc.clock.Now().UTC()
	r := AttendanceRecord{
		ID:        uuid.New().String(),
		StudentID: na.StudentID,
		CourseID:  na.CourseID,
		Date:      na.Date,
		Status:    na.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateAttendanceRecord(r)
}

// Exams

func (svc *Service) Exams(filter ExamFilter) ([]Exam, error) {
	return svc.repo.QueryExams(filter)
}

func (svc *Service) CreateExam(ne NewExam) (Exam, error) {
	now := svc.clock.Now().UTC()
	e := Exam{
		ID:        uuid.New().String(),
		CourseID:  ne.CourseID,
		Title:     ne.Title,
		Date:      ne.Date,
		Duration:  ne.Duration,
		MaxScore:  ne.MaxScore,
		Status:    ExamScheduled,
		CreatedAt: now,
		UpdatedAt: now,
	}
	e, err := svc.repo.CreateExam(e)
	if err != nil {
		return Exam{}, err
	}
	svc.notifier.Notify("Exam Scheduled", fmt.Sprintf("%q was scheduled", e.Title), "event", "high")
	return e, nil
}

// Events

func (svc *Service) Events(filter EventFilter) ([]Event, error) {
	return svc.repo.QueryEvents(filter)
}

func (svc *Service) CreateEvent(ne NewEvent) (Event, error) {
	now := svc.clock.Now().UTC()
	e := Event{
		ID:          uuid.New().String(),
		Title:       ne.Title,
		Description: ne.Description,
		Location:    ne.Location,
		StartsAt:    ne.StartsAt,
		EndsAt:      ne.EndsAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	e, err := svc.repo.CreateEvent(e)
	if err != nil {
		return Event{}, err
	}
	svc.notifier.Notify("Event Created", fmt.Sprintf("%q was added to the calendar", e.Title), "event", "low")
	return e, nil
}

// Fees

func (svc *Service) Fees(filter FeeFilter) ([]Fee, error) {
	return svc.repo.QueryFees(filter)
}

func (svc *Service) CreateFee(nf NewFee) (Fee, error) {
	now := svc.clock.Now().UTC()
	f := Fee{
		ID:          uuid.New().String(),
		StudentID:   nf.StudentID,
		Description: nf.Description,
		Amount:      nf.Amount,
		DueDate:     nf.DueDate,
		Status:      FeePending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f, err := svc.repo.CreateFee(f)
	if err != nil {
		return Fee{}, err
	}
	svc.notifier.Notify("Fee Added", fmt.Sprintf("%s (%.2f) is due", f.Description, f.Amount), "system", "medium")
	return f, nil
}

// StudentSummary joins courses (enrollment membership), assignments (course
// membership), grades and attendance (direct student reference) into one
// derived view.
type StudentSummary struct {
	StudentID     string             `json:"student_id"`
	Courses       []Course           `json:"courses"`
	Assignments   []Assignment       `json:"assignments"`
	Grades        []Grade            `json:"grades"`
	Attendance    []AttendanceRecord `json:"attendance"`
	GPA           float64            `json:"gpa"`
	AttendancePct float64            `json:"attendance_pct"`
}

// StudentSummary computes the derived per-student view. GPA is the arithmetic
// mean of the student's grade points (0 with no grades); attendance is
// present-count / total × 100, rounded to 2 decimal places (0 with no
// records).
func (svc *Service) StudentSummary(studentID string) (StudentSummary, error) {
	usr, err := svc.directory.GetByID(studentID)
	if err != nil {
		return StudentSummary{}, err
	}
	if !usr.IsStudent() {
		return StudentSummary{}, ErrStudentNotFound
	}

	summary := StudentSummary{StudentID: studentID}

	if summary.Courses, err = svc.repo.QueryCourses(CourseFilter{StudentID: studentID}); err != nil {
		return StudentSummary{}, err
	}
	for _, c := range summary.Courses {
		assignments, err := svc.repo.QueryAssignments(AssignmentFilter{CourseID: c.ID})
		if err != nil {
			return StudentSummary{}, err
		}
		summary.Assignments = append(summary.Assignments, assignments...)
	}
	if summary.Grades, err = svc.repo.QueryGrades(GradeFilter{StudentID: studentID}); err != nil {
		return StudentSummary{}, err
	}
	if summary.Attendance, err = svc.repo.QueryAttendance(AttendanceFilter{StudentID: studentID}); err != nil {
		return StudentSummary{}, err
	}

	if len(summary.Grades) > 0 {
		var points float64
		for _, g := range summary.Grades {
			points += g.Points
		}
		summary.GPA = core.Round2(points / float64(len(summary.Grades)))
	}
	if len(summary.Attendance) > 0 {
		var present int
		for _, r := range summary.Attendance {
			if r.Status == AttendancePresent {
				present++
			}
		}
		summary.AttendancePct = core.Round2(float64(present) / float64(len(summary.Attendance)) * 100)
	}
	return summary, nil
}

// Refresh discards every collection and reseeds the mock dataset. Called on
// successful login and on manual retry.
func (svc *Service) Refresh() error {
	return svc.repo.ReplaceAll(svc.seeder.SchoolData())
}
