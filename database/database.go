package database

import (
	"errors"
	"fmt"

	config "github.com/anjiri1684/enrollment_service/configs"
	"github.com/anjiri1684/enrollment_service/logger"
	"github.com/anjiri1684/enrollment_service/models"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	ErrNotFound  = errors.New("enrollment not found")
	ErrDuplicate = errors.New("duplicate active enrollment")
)

// activePairIndex allows at most one enrolled record per student and course.
// Dropped and completed records do not take part, so a dropped course can be
// enrolled in again.
const activePairIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_enrollments_active_pair
	ON enrollments (student_id, course_id) WHERE status = 'enrolled'`

// Store owns the database handle for the enrollments collection.
type Store struct {
	DB  *gorm.DB
	log *logger.Logger
}

func GormConfig(appEnv string) *gorm.Config {
	level := gormlogger.Silent
	if appEnv == "development" {
		level = gormlogger.Warn
	}
	return &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   gormlogger.Default.LogMode(level),
	}
}

// Open connects to Postgres. The caller must Close the returned store.
func Open(cfg config.Config, log *logger.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), GormConfig(cfg.AppEnv))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	log.Info("database connected")
	return New(db, log), nil
}

func New(db *gorm.DB, log *logger.Logger) *Store {
	return &Store{DB: db, log: log}
}

func (s *Store) Migrate() error {
	if err := s.DB.AutoMigrate(&models.Enrollment{}); err != nil {
		return fmt.Errorf("migrate enrollments: %w", err)
	}
	if err := s.DB.Exec(activePairIndex).Error; err != nil {
		return fmt.Errorf("create active pair index: %w", err)
	}
	s.log.Info("database migration successful")
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
