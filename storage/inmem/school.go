package inmem

import (
	"github.com/darasa/backend/core/school"
)

type schoolRepository struct {
	db *schoolTable
}

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{db: db.school}
}

func (repo *schoolRepository) QueryCourses(filter school.CourseFilter) ([]school.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	out := make([]school.Course, 0)
	for _, c := range repo.db.courses {
		if filter.Match(*c) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (repo *schoolRepository) CreateCourse(c school.Course) (school.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.courses[c.ID] = &c
	return c, nil
}

func (repo *schoolRepository) QueryAssignments(filter school.AssignmentFilter) ([]school.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	out := make([]school.Assignment, 0)
	for _, a := range repo.db.assignments {
		if filter.Match(*a) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (repo *schoolRepository) CreateAssignment(a school.Assignment) (school.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.assignments[a.ID] = &a
	return a, nil
}

func (repo *schoolRepository) QueryGrades(filter school.GradeFilter) ([]school.Grade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	out := make([]school.Grade, 0)
	for _, g := range repo.db.grades {
		if filter.Match(*g) {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (repo *schoolRepository) CreateGrade(g school.Grade) (school.Grade, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.grades[g.ID] = &g
	return g, nil
}

func (repo *schoolRepository) QueryAttendance(filter school.AttendanceFilter) ([]school.AttendanceRecord, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	out := make([]school.AttendanceRecord, 0)
	for _, r := range repo.db.attendance {
		if filter.Match(*r) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (repo *schoolRepository) CreateAttendanceRecord(r school.AttendanceRecord) (school.AttendanceRecord, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.attendance[r.ID] = &r
	return r, nil
}

func (repo *schoolRepository) QueryExams(filter school.ExamFilter) ([]school.Exam, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	out := make([]school.Exam, 0)
	for _, e := range repo.db.exams {
		if filter.Match(*e) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (repo *schoolRepository) CreateExam(e school.Exam) (school.Exam, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.exams[e.ID] = &e
	return e, nil
}

func (repo *schoolRepository) QueryEvents(filter school.EventFilter) ([]school.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	out := make([]school.Event, 0)
	for _, e := range repo.db.events {
		if filter.Match(*e) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (repo *schoolRepository) CreateEvent(e school.Event) (school.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.events[e.ID] = &e
	return e, nil
}

func (repo *schoolRepository) QueryFees(filter school.FeeFilter) ([]school.Fee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	out := make([]school.Fee, 0)
	for _, f := range repo.db.fees {
		if filter.Match(*f) {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (repo *schoolRepository) CreateFee(f school.Fee) (school.Fee, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.fees[f.ID] = &f
	return f, nil
}

// ReplaceAll swaps every collection for the dataset under a single lock.
func (repo *schoolRepository) ReplaceAll(ds school.Dataset) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.reset()
	for i := range ds.Courses {
		c := ds.Courses[i]
		repo.db.courses[c.ID] = &c
	}
	for i := range ds.Assignments {
		a := ds.Assignments[i]
		repo.db.assignments[a.ID] = &a
	}
	for i := range ds.Grades {
		g := ds.Grades[i]
		repo.db.grades[g.ID] = &g
	}
	for i := range ds.Attendance {
		r := ds.Attendance[i]
		repo.db.attendance[r.ID] = &r
	}
	for i := range ds.Exams {
		e := ds.Exams[i]
		repo.db.exams[e.ID] = &e
	}
	for i := range ds.Events {
		e := ds.Events[i]
		repo.db.events[e.ID] = &e
	}
	for i := range ds.Fees {
		f := ds.Fees[i]
		repo.db.fees[f.ID] = &f
	}
	return nil
}
