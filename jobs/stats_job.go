package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/anjiri1684/enrollment_service/directory"
	"github.com/anjiri1684/enrollment_service/logger"
	"github.com/anjiri1684/enrollment_service/models"
	"github.com/robfig/cron/v3"
)

const statsTimeout = 30 * time.Second

type StatsStore interface {
	CountsByStatus(ctx context.Context) (map[models.EnrollmentStatus]int64, error)
	CountsByCourse(ctx context.Context, statuses ...models.EnrollmentStatus) (map[string]int64, error)
}

type CourseLookup interface {
	GetCourse(ctx context.Context, id string) (*directory.Course, error)
}

// StatsJob logs a snapshot of enrollment totals and flags courses whose active
// enrollments exceed their capacity. Concurrent enrollments can overshoot the
// limit, so this is where that shows up.
type StatsJob struct {
	store   StatsStore
	courses CourseLookup
	log     *logger.Logger
}

func NewStatsJob(store StatsStore, courses CourseLookup, log *logger.Logger) *StatsJob {
	return &StatsJob{store: store, courses: courses, log: log.With("job", "enrollment_stats")}
}

// Schedule registers the job. cron.SkipIfStillRunning keeps slow runs from
// piling up.
func Schedule(c *cron.Cron, schedule string, job *StatsJob) (cron.EntryID, error) {
	wrapped := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(job)
	return c.AddJob(schedule, wrapped)
}

func (j *StatsJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), statsTimeout)
	defer cancel()
	if _, err := j.Snapshot(ctx); err != nil {
		j.log.Error("stats snapshot failed", "error", err)
	}
}

// Snapshot returns the ids of courses found over capacity.
func (j *StatsJob) Snapshot(ctx context.Context) ([]string, error) {
	byStatus, err := j.store.CountsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, n := range byStatus {
		total += n
	}
	j.log.Info("enrollment snapshot",
		"total", total,
		"enrolled", byStatus[models.StatusEnrolled],
		"completed", byStatus[models.StatusCompleted],
		"dropped", byStatus[models.StatusDropped],
	)

	active, err := j.store.CountsByCourse(ctx, models.StatusEnrolled)
	if err != nil {
		return nil, err
	}

	var over []string
	for courseID, n := range active {
		course, err := j.courses.GetCourse(ctx, courseID)
		if err != nil {
			if !errors.Is(err, directory.ErrNotFound) {
				j.log.Warn("course lookup failed", "course_id", courseID, "error", err)
			}
			continue
		}
		if course.HasCapacityLimit() && n > int64(*course.MaxStudents) {
			j.log.Warn("course over capacity", "course_id", courseID, "active", n, "max_students", *course.MaxStudents)
			over = append(over, courseID)
		}
	}
	return over, nil
}
