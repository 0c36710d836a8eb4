package inmem

import (
	"sync"

	"github.com/darasa/backend/core/notification"
	"github.com/darasa/backend/core/realtime"
	"github.com/darasa/backend/core/school"
	"github.com/darasa/backend/core/user"
)

type (
	// DB holds every store's private backing collection. Each table carries
	// its own lock; cross-store reads only ever happen through the
	// repositories, never through shared references.
	DB struct {
		user         *userTable
		session      *sessionTable
		school       *schoolTable
		notification *notificationTable
		chat         *chatTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	// sessionTable is the durable-client-storage analog: two key/value
	// entries (token, serialized principal).
	sessionTable struct {
		sync.RWMutex
		table map[string][]byte
	}

	schoolTable struct {
		sync.RWMutex
		courses     map[string]*school.Course
		assignments map[string]*school.Assignment
		grades      map[string]*school.Grade
		attendance  map[string]*school.AttendanceRecord
		exams       map[string]*school.Exam
		events      map[string]*school.Event
		fees        map[string]*school.Fee
	}

	notificationTable struct {
		sync.RWMutex
		list []notification.Notification // newest first
	}

	chatTable struct {
		sync.RWMutex
		chats    map[string]*realtime.Chat
		messages map[string][]realtime.Message // chatID → messages, oldest first
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:         &userTable{table: make(map[string]*user.User)},
		session:      &sessionTable{table: make(map[string][]byte)},
		notification: &notificationTable{},
		chat: &chatTable{
			chats:    make(map[string]*realtime.Chat),
			messages: make(map[string][]realtime.Message),
		},
	}
	db.school = &schoolTable{}
	db.school.reset()
	return db, nil
}

func (t *schoolTable) reset() {
	t.courses = make(map[string]*school.Course)
	t.assignments = make(map[string]*school.Assignment)
	t.grades = make(map[string]*school.Grade)
	t.attendance = make(map[string]*school.AttendanceRecord)
	t.exams = make(map[string]*school.Exam)
	t.events = make(map[string]*school.Event)
	t.fees = make(map[string]*school.Fee)
}
