package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port   string `env:"PORT" envDefault:"8002"`
	AppEnv string `env:"APP_ENV" envDefault:"development"`

	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`

	StudentServiceURL string        `env:"STUDENT_SERVICE_URL" envDefault:"http://localhost:8001"`
	CourseServiceURL  string        `env:"COURSE_SERVICE_URL" envDefault:"http://localhost:8000"`
	GatewayTimeout    time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"10s"`
	GatewayFanout     int           `env:"GATEWAY_FANOUT" envDefault:"8"`

	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"*"`
	StatsCron   string `env:"STATS_CRON" envDefault:"*/15 * * * *"`

	BrevoAPIKey     string `env:"BREVO_API_KEY"`
	EmailSender     string `env:"EMAIL_SENDER"`
	EmailSenderName string `env:"EMAIL_SENDER_NAME"`
}

// Load reads the optional .env files into the process environment and then
// parses the environment into a Config. A missing .env file is not an error.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.GatewayTimeout <= 0 {
		return Config{}, fmt.Errorf("GATEWAY_TIMEOUT must be positive, got %s", cfg.GatewayTimeout)
	}
	if cfg.GatewayFanout < 1 {
		cfg.GatewayFanout = 1
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "prod" || c.AppEnv == "production"
}
