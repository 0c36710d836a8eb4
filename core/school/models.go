package school

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/darasa/backend/core"
)

// Assignment types
const (
	AssignmentHomework     = "homework"
	AssignmentProject      = "project"
	AssignmentQuiz         = "quiz"
	AssignmentExam         = "exam"
	AssignmentPresentation = "presentation"
)

// Assignment lifecycle statuses. The progression draft → published → closed →
// graded is conventional, not enforced.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusClosed    = "closed"
	StatusGraded    = "graded"
)

// Submission statuses
const (
	SubmissionSubmitted = "submitted"
	SubmissionLate      = "late"
	SubmissionGraded    = "graded"
	SubmissionReturned  = "returned"
)

// Attendance statuses
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
	AttendanceExcused = "excused"
)

// Exam statuses
const (
	ExamScheduled = "scheduled"
	ExamOngoing   = "ongoing"
	ExamCompleted = "completed"
)

// Fee statuses
const (
	FeePending = "pending"
	FeePaid    = "paid"
	FeeOverdue = "overdue"
)

type (
	ScheduleSlot struct {
		Day       string `json:"day"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
		Room      string `json:"room"`
	}

	Course struct {
		ID               string         `json:"id"`
		Name             string         `json:"name"`
		Code             string         `json:"code"`
		TeacherID        string         `json:"teacher_id"`
		EnrolledStudents []string       `json:"enrolled_students"`
		Schedule         []ScheduleSlot `json:"schedule"`
		TotalSeats       int            `json:"total_seats"`
		IsActive         bool           `json:"is_active"`
		CreatedAt        time.Time      `json:"created_at"`
		UpdatedAt        time.Time      `json:"updated_at"`
	}

	Assignment struct {
		ID          string       `json:"id"`
		CourseID    string       `json:"course_id"`
		Title       string       `json:"title"`
		Type        string       `json:"type"`
		Status      string       `json:"status"`
		DueDate     time.Time    `json:"due_date"`
		MaxScore    float64      `json:"max_score"`
		Submissions []Submission `json:"submissions"`
		CreatedAt   time.Time    `json:"created_at"`
		UpdatedAt   time.Time    `json:"updated_at"`
	}

	Submission struct {
		ID           string    `json:"id"`
		AssignmentID string    `json:"assignment_id"`
		StudentID    string    `json:"student_id"`
		SubmittedAt  time.Time `json:"submitted_at"`
		Status       string    `json:"status"`
		Score        *float64  `json:"score,omitempty"`
		Feedback     string    `json:"feedback,omitempty"`
	}

	Grade struct {
		ID        string  `json:"id"`
		StudentID string  `json:"student_id"`
		CourseID  string  `json:"course_id"`
		Score     float64 `json:"score"`
		MaxScore  float64 `json:"max_score"`

		// derived via the fixed score→letter→points scale
		Percentage float64 `json:"percentage"`
		Letter     string  `json:"letter"`
		Points     float64 `json:"points"`

		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	AttendanceRecord struct {
		ID        string    `json:"id"`
		StudentID string    `json:"student_id"`
		CourseID  string    `json:"course_id"`
		Date      time.Time `json:"date"`
		Status    string    `json:"status"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	Exam struct {
		ID        string    `json:"id"`
		CourseID  string    `json:"course_id"`
		Title     string    `json:"title"`
		Date      time.Time `json:"date"`
		Duration  int       `json:"duration_minutes"`
		MaxScore  float64   `json:"max_score"`
		Status    string    `json:"status"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	Event struct {
		ID          string    `json:"id"`
		Title       string    `json:"title"`
		Description string    `json:"description,omitempty"`
		Location    string    `json:"location,omitempty"`
		StartsAt    time.Time `json:"starts_at"`
		EndsAt      time.Time `json:"ends_at"`
		CreatedAt   time.Time `json:"created_at"`
		UpdatedAt   time.Time `json:"updated_at"`
	}

	Fee struct {
		ID          string     `json:"id"`
		StudentID   string     `json:"student_id"`
		Description string     `json:"description"`
		Amount      float64    `json:"amount"`
		DueDate     time.Time  `json:"due_date"`
		Status      string     `json:"status"`
		// set once paid
		PaymentMethod string     `json:"payment_method,omitempty"`
		TransactionID string     `json:"transaction_id,omitempty"`
		PaidAt        *time.Time `json:"paid_at,omitempty"`
		CreatedAt     time.Time  `json:"created_at"`
		UpdatedAt     time.Time  `json:"updated_at"`
	}
)

// New* inputs. Ids and timestamps are synthesized by the store.

type NewCourse struct {
	Name             string         `json:"name" validate:"required"`
	Code             string         `json:"code" validate:"required"`
	TeacherID        string         `json:"teacher_id" validate:"required"`
	EnrolledStudents []string       `json:"enrolled_students"`
	Schedule         []ScheduleSlot `json:"schedule"`
	TotalSeats       int            `json:"total_seats"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Code = core.CleanString(nc.Code)
	return validate.Struct(nc)
}

type NewAssignment struct {
	CourseID string    `json:"course_id" validate:"required"`
	Title    string    `json:"title" validate:"required"`
	Type     string    `json:"type" validate:"required,oneof=homework project quiz exam presentation"`
	Status   string    `json:"status" validate:"omitempty,oneof=draft published closed graded"`
	DueDate  time.Time `json:"due_date" validate:"required"`
	MaxScore float64   `json:"max_score" validate:"required,gt=0"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	return validate.Struct(na)
}

type NewGrade struct {
	StudentID string  `json:"student_id" validate:"required"`
	CourseID  string  `json:"course_id" validate:"required"`
	Score     float64 `json:"score" validate:"gte=0"`
	MaxScore  float64 `json:"max_score" validate:"required,gt=0"`
}

func (ng *NewGrade) Validate(validate *validator.Validate) error {
	return validate.Struct(ng)
}

type NewAttendanceRecord struct {
	StudentID string    `json:"student_id" validate:"required"`
	CourseID  string    `json:"course_id" validate:"required"`
	Date      time.Time `json:"date" validate:"required"`
	Status    string    `json:"status" validate:"required,oneof=present absent late excused"`
}

func (na *NewAttendanceRecord) Validate(validate *validator.Validate) error {
	return validate.Struct(na)
}

type NewExam struct {
	CourseID string    `json:"course_id" validate:"required"`
	Title    string    `json:"title" validate:"required"`
	Date     time.Time `json:"date" validate:"required"`
	Duration int       `json:"duration_minutes" validate:"required,gt=0"`
	MaxScore float64   `json:"max_score" validate:"required,gt=0"`
}

func (ne *NewExam) Validate(validate *validator.Validate) error {
	ne.Title = core.CleanString(ne.Title)
	return validate.Struct(ne)
}

type NewEvent struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
}

func (ne *NewEvent) Validate(validate *validator.Validate) error {
	ne.Title = core.CleanString(ne.Title)
	return validate.Struct(ne)
}

type NewFee struct {
	StudentID   string    `json:"student_id" validate:"required"`
	Description string    `json:"description" validate:"required"`
	Amount      float64   `json:"amount" validate:"required,gt=0"`
	DueDate     time.Time `json:"due_date" validate:"required"`
}

func (nf *NewFee) Validate(validate *validator.Validate) error {
	nf.Description = core.CleanString(nf.Description)
	return validate.Struct(nf)
}
