package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/anjiri1684/enrollment_service/database"
	"github.com/anjiri1684/enrollment_service/database/databasetest"
	"github.com/anjiri1684/enrollment_service/directory"
	"github.com/anjiri1684/enrollment_service/logger"
	"github.com/anjiri1684/enrollment_service/models"
)

var (
	admin = models.Requester{ID: "admin-1", Role: models.RoleAdmin}
	s1    = models.Requester{ID: "s1", Role: models.RoleStudent}
	s2    = models.Requester{ID: "s2", Role: models.RoleStudent}
)

type fakeDirectory struct {
	mu         sync.Mutex
	students   map[string]*directory.Student
	courses    map[string]*directory.Course
	studentErr map[string]error
	courseErr  map[string]error
	calls      int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		students:   map[string]*directory.Student{},
		courses:    map[string]*directory.Course{},
		studentErr: map[string]error{},
		courseErr:  map[string]error{},
	}
}

func (f *fakeDirectory) addStudent(id, name string) {
	f.students[id] = &directory.Student{ID: id, Name: name, Email: id + "@example.com"}
}

func (f *fakeDirectory) addCourse(id, title string, credits int, maxStudents *int) {
	f.courses[id] = &directory.Course{ID: id, Title: title, Credits: credits, MaxStudents: maxStudents}
}

func (f *fakeDirectory) GetStudent(ctx context.Context, id string) (*directory.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.studentErr[id]; err != nil {
		return nil, err
	}
	s, ok := f.students[id]
	if !ok {
		return nil, fmt.Errorf("student %s: %w", id, directory.ErrNotFound)
	}
	cp := *s
	return &cp, nil
}

func (f *fakeDirectory) GetCourse(ctx context.Context, id string) (*directory.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.courseErr[id]; err != nil {
		return nil, err
	}
	c, ok := f.courses[id]
	if !ok {
		return nil, fmt.Errorf("course %s: %w", id, directory.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (f *fakeDirectory) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func intPtr(n int) *int { return &n }

type fixture struct {
	store   *database.Store
	dir     *fakeDirectory
	engine  *EnrollmentService
	reports *ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := databasetest.NewStore(t)
	dir := newFakeDirectory()
	dir.addStudent("s1", "Ada")
	dir.addStudent("s2", "Grace")
	dir.addCourse("c1", "Compilers", 3, intPtr(1))
	dir.addCourse("c2", "Networks", 4, nil)
	return &fixture{
		store:   store,
		dir:     dir,
		engine:  NewEnrollmentService(store, dir, nil, logger.Nop()),
		reports: NewReportService(store, dir, logger.Nop(), 4),
	}
}

func (f *fixture) enroll(t *testing.T, req models.Requester, studentID, courseID string) *models.Enrollment {
	t.Helper()
	e, err := f.engine.Enroll(context.Background(), req, studentID, courseID)
	if err != nil {
		t.Fatalf("Enroll(%s,%s): %v", studentID, courseID, err)
	}
	return e
}

func assertKind(t *testing.T, err error, kind error, code string) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("error kind: want %v got %v", kind, err)
	}
	var domainErr *Error
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if code != "" && domainErr.Code != code {
		t.Fatalf("error code: want=%q got=%q", code, domainErr.Code)
	}
}
