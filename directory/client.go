// Package directory reaches the student and course services that own the
// facts an enrollment refers to.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrNotFound means the remote service answered 404 for the resource.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable covers timeouts, connection failures, unexpected status
	// codes and undecodable bodies.
	ErrUnavailable = errors.New("service unavailable")
)

type Student struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	CreatedAt *string `json:"created_at,omitempty"`
}

type Course struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Description   *string `json:"description,omitempty"`
	Credits       int     `json:"credits"`
	Instructor    *string `json:"instructor,omitempty"`
	DurationWeeks *int    `json:"duration_weeks,omitempty"`
	MaxStudents   *int    `json:"max_students,omitempty"`
}

// HasCapacityLimit reports whether the course declares a positive seat limit.
func (c *Course) HasCapacityLimit() bool {
	return c.MaxStudents != nil && *c.MaxStudents > 0
}

type Client struct {
	studentURL string
	courseURL  string
	http       *http.Client
}

// New builds a client whose every call is bounded by timeout.
func New(studentURL, courseURL string, timeout time.Duration) *Client {
	return &Client{
		studentURL: strings.TrimRight(studentURL, "/"),
		courseURL:  strings.TrimRight(courseURL, "/"),
		http:       &http.Client{Timeout: timeout},
	}
}

func (c *Client) GetStudent(ctx context.Context, id string) (*Student, error) {
	var s Student
	if err := c.get(ctx, c.studentURL, "students", id, &s); err != nil {
		return nil, fmt.Errorf("student %s: %w", id, err)
	}
	return &s, nil
}

func (c *Client) GetCourse(ctx context.Context, id string) (*Course, error) {
	var course Course
	if err := c.get(ctx, c.courseURL, "courses", id, &course); err != nil {
		return nil, fmt.Errorf("course %s: %w", id, err)
	}
	return &course, nil
}

func (c *Client) get(ctx context.Context, base, resource, id string, out interface{}) error {
	endpoint := base + "/" + resource + "/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUnavailable, resource, err)
	}
	return nil
}
