package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"

	EnvDevelopment = "development"
)

type HTTPConfig struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":5000"`
	Timeout     time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"10s"`
	FrontendURL string        `yaml:"frontend_url" env:"FRONTEND_URL" env-default:"http://localhost:8080"`
}

type MongoConfig struct {
	URI                    string        `yaml:"uri" env:"MONGODB_URI,MONGO_URI" env-default:"mongodb://127.0.0.1:27017"`
	Database               string        `yaml:"database" env:"MONGODB_DATABASE" env-default:"kanban"`
	ServerSelectionTimeout time.Duration `yaml:"server_selection_timeout" env:"MONGODB_SERVER_SELECTION_TIMEOUT" env-default:"5s"`
}

type PostgresConfig struct {
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	DBName   string `yaml:"name" env:"DB_NAME" env-default:"kanban"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
}

// URL renders the connection string accepted by pgx and golang-migrate.
func (c PostgresConfig) URL() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

type StorageConfig struct {
	Driver            string         `yaml:"driver" env:"STORAGE_DRIVER" env-default:"mongo"`
	ConnectRetryDelay time.Duration  `yaml:"connect_retry_delay" env:"CONNECT_RETRY_DELAY" env-default:"5s"`
	Mongo             MongoConfig    `yaml:"mongo"`
	Postgres          PostgresConfig `yaml:"postgres"`
}

type RabbitMQConfig struct {
	URL   string `yaml:"url" env:"RABBITMQ_URL"`
	Queue string `yaml:"queue" env:"RABBITMQ_QUEUE" env-default:"board_audit_logs"`
}

type Config struct {
	Env              string         `yaml:"env" env:"APP_ENV,NODE_ENV" env-default:"development"`
	LogLevel         string         `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogJSON          bool           `yaml:"log_json" env:"LOG_JSON" env-default:"false"`
	ReconcileOnStart bool           `yaml:"reconcile_on_start" env:"RECONCILE_ON_START" env-default:"true"`
	HTTP             HTTPConfig     `yaml:"http"`
	Storage          StorageConfig  `yaml:"storage"`
	RabbitMQ         RabbitMQConfig `yaml:"rabbitmq"`
}

func (c Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

func (c Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMongo, DriverPostgres:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.ConnectRetryDelay <= 0 {
		return errors.New("connect retry delay must be positive")
	}
	return nil
}

// Load reads a .env file when present, then the yaml file at configPath, and
// falls back to the environment alone when the path is empty or missing.
func Load(configPath string) (Config, error) {
	var cfg Config

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return cfg, fmt.Errorf("read env: %w", err)
		}
		return cfg, cfg.Validate()
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		var pe *os.PathError
		if !errors.As(err, &pe) {
			return cfg, fmt.Errorf("read config %q: %w", configPath, err)
		}
		cfg = Config{}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return cfg, fmt.Errorf("read env: %w", err)
		}
	}
	return cfg, cfg.Validate()
}

func MustLoad(configPath string) Config {
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %s", err)
	}
	return cfg
}
