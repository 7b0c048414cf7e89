package directory

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestGetStudentDecodesProfile(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/students/s1" {
			t.Errorf("path: want=%q got=%q", "/students/s1", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"s1","name":"Ada","email":"ada@example.com"}`))
	})
	c := New(srv.URL, srv.URL, time.Second)

	s, err := c.GetStudent(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GetStudent: %v", err)
	}
	if s.Name != "Ada" || s.Email != "ada@example.com" {
		t.Fatalf("unexpected student: %+v", s)
	}
}

func TestGetCourseDecodesCapacity(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"c1","title":"Go","credits":3,"max_students":25}`))
	})
	c := New(srv.URL+"/", srv.URL+"/", time.Second)

	course, err := c.GetCourse(context.Background(), "c1")
	if err != nil {
		t.Fatalf("GetCourse: %v", err)
	}
	if !course.HasCapacityLimit() || *course.MaxStudents != 25 {
		t.Fatalf("max students: got %+v", course.MaxStudents)
	}
	if course.Credits != 3 {
		t.Fatalf("credits: want=3 got=%d", course.Credits)
	}
}

func TestCourseWithoutLimit(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"c1","title":"Go","credits":3,"max_students":null}`))
	})
	course, err := New(srv.URL, srv.URL, time.Second).GetCourse(context.Background(), "c1")
	if err != nil {
		t.Fatalf("GetCourse: %v", err)
	}
	if course.HasCapacityLimit() {
		t.Fatalf("expected no capacity limit")
	}
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "not found", status: http.StatusNotFound, want: ErrNotFound},
		{name: "server error", status: http.StatusInternalServerError, body: "boom", want: ErrUnavailable},
		{name: "bad json", status: http.StatusOK, body: "{", want: ErrUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := New(srv.URL, srv.URL, time.Second).GetCourse(context.Background(), "c1")
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v got %v", tc.want, err)
			}
		})
	}
}

func TestTimeoutIsUnavailable(t *testing.T) {
	release := make(chan struct{})
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	_, err := New(srv.URL, srv.URL, 50*time.Millisecond).GetStudent(context.Background(), "s1")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("want ErrUnavailable got %v", err)
	}
}

func TestConnectionRefusedIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := New(addr, addr, time.Second).GetStudent(context.Background(), "s1")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("want ErrUnavailable got %v", err)
	}
}

func TestIDIsPathEscaped(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/courses/a%2Fb" {
			t.Errorf("escaped path: got %q", r.URL.EscapedPath())
		}
		_, _ = w.Write([]byte(`{"id":"a/b","title":"x","credits":1}`))
	})
	if _, err := New(srv.URL, srv.URL, time.Second).GetCourse(context.Background(), "a/b"); err != nil {
		t.Fatalf("GetCourse: %v", err)
	}
}
