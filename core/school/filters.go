package school

import "time"

// Query filters. Every filter applies AND semantics on its set fields;
// zero-value fields are ignored.

type CourseFilter struct {
	ID        string `query:"id"`
	TeacherID string `query:"teacher_id"`
	// StudentID matches courses whose enrollment list contains the student.
	StudentID string `query:"student_id"`
	IsActive  *bool  `query:"is_active"`
}

func (f CourseFilter) Match(c Course) bool {
	if f.ID != "" && c.ID != f.ID {
		return false
	}
	if f.TeacherID != "" && c.TeacherID != f.TeacherID {
		return false
	}
	if f.StudentID != "" && !contains(c.EnrolledStudents, f.StudentID) {
		return false
	}
	if f.IsActive != nil && c.IsActive != *f.IsActive {
		return false
	}
	return true
}

type AssignmentFilter struct {
	ID       string `query:"id"`
	CourseID string `query:"course_id"`
	Type     string `query:"type"`
	Status   string `query:"status"`
}

func (f AssignmentFilter) Match(a Assignment) bool {
	if f.ID != "" && a.ID != f.ID {
		return false
	}
	if f.CourseID != "" && a.CourseID != f.CourseID {
		return false
	}
	if f.Type != "" && a.Type != f.Type {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	return true
}

type GradeFilter struct {
	ID        string `query:"id"`
	StudentID string `query:"student_id"`
	CourseID  string `query:"course_id"`
}

func (f GradeFilter) Match(g Grade) bool {
	if f.ID != "" && g.ID != f.ID {
		return false
	}
	if f.StudentID != "" && g.StudentID != f.StudentID {
		return false
	}
	if f.CourseID != "" && g.CourseID != f.CourseID {
		return false
	}
	return true
}

type AttendanceFilter struct {
	ID        string    `query:"id"`
	StudentID string    `query:"student_id"`
	CourseID  string    `query:"course_id"`
	Status    string    `query:"status"`
	Date      time.Time `query:"date"`
}

func (f AttendanceFilter) Match(r AttendanceRecord) bool {
	if f.ID != "" && r.ID != f.ID {
		return false
	}
	if f.StudentID != "" && r.StudentID != f.StudentID {
		return false
	}
	if f.CourseID != "" && r.CourseID != f.CourseID {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if !f.Date.IsZero() && !sameDay(r.Date, f.Date) {
		return false
	}
	return true
}

type ExamFilter struct {
	ID       string `query:"id"`
	CourseID string `query:"course_id"`
	Status   string `query:"status"`
}

func (f ExamFilter) Match(e Exam) bool {
	if f.ID != "" && e.ID != f.ID {
		return false
	}
	if f.CourseID != "" && e.CourseID != f.CourseID {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	return true
}

type EventFilter struct {
	ID string `query:"id"`
	// From keeps events ending at or after this instant.
	From time.Time `query:"from"`
}

func (f EventFilter) Match(e Event) bool {
	if f.ID != "" && e.ID != f.ID {
		return false
	}
	if !f.From.IsZero() && e.EndsAt.Before(f.From) {
		return false
	}
	return true
}

type FeeFilter struct {
	ID        string `query:"id"`
	StudentID string `query:"student_id"`
	Status    string `query:"status"`
}

func (f FeeFilter) Match(fee Fee) bool {
	if f.ID != "" && fee.ID != f.ID {
		return false
	}
	if f.StudentID != "" && fee.StudentID != f.StudentID {
		return false
	}
	if f.Status != "" && fee.Status != f.Status {
		return false
	}
	return true
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
