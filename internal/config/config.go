package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name      string `envconfig:"APP_NAME" default:"Payday"`
		Port      int    `envconfig:"PORT" default:"8080"`
		LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
		LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"payday"`
		Migrate  bool   `envconfig:"DB_MIGRATE" default:"true"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		AllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
		SSLRedirect    bool          `envconfig:"SSL_REDIRECT" default:"false"`
	}

	// Empty address disables the dashboard cache.
	Redis struct {
		Addr     string        `envconfig:"REDIS_ADDR" default:""`
		CacheTTL time.Duration `envconfig:"DASHBOARD_CACHE_TTL" default:"5m"`
	}

	// Empty broker list disables event publishing.
	Kafka struct {
		Brokers []string `envconfig:"KAFKA_BROKERS"`
		Topic   string   `envconfig:"KAFKA_TOPIC" default:"funds.moved"`
	}

	Routing struct {
		RulesFile string `envconfig:"ROUTING_RULES_FILE"`
	}

	Jobs struct {
		RedisAddr     string `envconfig:"JOBS_REDIS_ADDR" default:"127.0.0.1:6379"`
		BillResetCron string `envconfig:"BILL_RESET_CRON" default:"0 0 1 * *"`
		Concurrency   int    `envconfig:"JOBS_CONCURRENCY" default:"2"`
		MetricsPort   int    `envconfig:"WORKER_METRICS_PORT" default:"9091"`
	}

	RateLimit struct {
		Requests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"30"`
		Window   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.RateLimit.Requests < 1 {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REQUESTS %d: must be at least 1", cfg.RateLimit.Requests)
	}

	return &cfg, nil
}
