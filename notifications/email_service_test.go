package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/anjiri1684/enrollment_service/directory"
	"github.com/anjiri1684/enrollment_service/logger"
)

func TestEnrollmentConfirmedPostsBrevoPayload(t *testing.T) {
	var got brevoPayload
	var apiKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("api-key")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	svc := NewEmailService("key-123", "noreply@portal.test", "Portal", logger.Nop()).WithEndpoint(srv.URL)
	svc.EnrollmentConfirmed(context.Background(),
		directory.Student{ID: "s1", Name: "Ada", Email: "ada@example.com"},
		directory.Course{ID: "c1", Title: "Distributed Systems", Credits: 4},
	)

	if apiKey != "key-123" {
		t.Fatalf("api-key header: want=%q got=%q", "key-123", apiKey)
	}
	if len(got.To) != 1 || got.To[0]["email"] != "ada@example.com" {
		t.Fatalf("recipient: got %+v", got.To)
	}
	if !strings.Contains(got.Subject, "Distributed Systems") {
		t.Fatalf("subject: got %q", got.Subject)
	}
	if got.Sender["email"] != "noreply@portal.test" {
		t.Fatalf("sender: got %+v", got.Sender)
	}
}

func TestDisabledServiceSkipsSend(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	svc := NewEmailService("", "noreply@portal.test", "Portal", logger.Nop()).WithEndpoint(srv.URL)
	svc.CourseCompleted(context.Background(),
		directory.Student{Name: "Ada", Email: "ada@example.com"},
		directory.Course{Title: "Go"},
	)
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("expected no request when disabled")
	}
}

func TestSendRejectsInvalidRecipient(t *testing.T) {
	svc := NewEmailService("key", "noreply@portal.test", "Portal", logger.Nop())
	if err := svc.send(context.Background(), "not-an-email", "", "s", "b"); err == nil {
		t.Fatalf("expected error for invalid recipient")
	}
}

func TestSendReportsNonCreatedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	svc := NewEmailService("key", "noreply@portal.test", "Portal", logger.Nop()).WithEndpoint(srv.URL)
	err := svc.send(context.Background(), "ada@example.com", "Ada", "s", "b")
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("want status error, got %v", err)
	}
}
