// Package config предоставляет структуры и функции для парсинга и загрузки конфига.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	// EnvLocal локальный запуск, подробные логи.
	EnvLocal = "local"
	// EnvDev тестовый стенд.
	EnvDev = "dev"
	// EnvProd боевое окружение.
	EnvProd = "prod"
)

// Способы доставки кода подтверждения.
const (
	MailerConsole  = "console"
	MailerSMTP     = "smtp"
	MailerRabbitMQ = "rabbitmq"
)

// Config общая структура для хранения настроек.
type Config struct {
	Env                     string          `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string          `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING" env-required:"true"`
	MigrationsPath          string          `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	Redis                   RedisConnection `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Pagination              Pagination `yaml:"pagination"`
	RateLimit               RateLimit  `yaml:"rate_limit"`
	Mailer                  Mailer     `yaml:"mailer"`
	SMTP                    SMTP       `yaml:"smtp"`
	RabbitMQ                RabbitMQ   `yaml:"rabbitmq"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis.
// Пустой адрес отключает кеш.
type RedisConnection struct {
	Address     string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password    string        `yaml:"password" env:"REDIS_PASSWORD"`
	User        string        `yaml:"user"`
	DB          int           `yaml:"db"`
	MaxRetries  int           `yaml:"max_retries"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
	Timeout     time.Duration `yaml:"timeoutredis"`
	UserTTL     time.Duration `yaml:"user_ttl" env-default:"1m"`
}

// JWTToken структура для работы с jwt-токеном.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// Pagination настройки постраничной выдачи.
type Pagination struct {
	PageSize    int `yaml:"page_size" env-default:"10"`
	MaxPageSize int `yaml:"max_page_size" env-default:"100"`
}

// RateLimit ограничение частоты запросов к /auth.
type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"1"`
	Burst int     `yaml:"burst" env-default:"5"`
}

// Mailer выбирает способ доставки кодов подтверждения.
type Mailer struct {
	Transport string `yaml:"transport" env:"MAILER_TRANSPORT" env-default:"console"`
	From      string `yaml:"from" env-default:"noreply@yamdb.local"`
}

// SMTP параметры почтового сервера.
type SMTP struct {
	Host string `yaml:"host" env:"SMTP_HOST"`
	Port string `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	User string `yaml:"user" env:"SMTP_USER"`
	Pass string `yaml:"pass" env:"SMTP_PASS"`
}

// RabbitMQ параметры подключения к брокеру.
type RabbitMQ struct {
	URL        string        `yaml:"url" env:"RABBITMQ_URL"`
	MaxRetries int           `yaml:"max_retries" env-default:"5"`
	RetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// MustLoad загружает конфиг из файла, путь к которому лежит в CONFIG_PATH.
// При любой ошибке завершает процесс.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load читает и проверяет конфиг по указанному пути.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, path)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Mailer.Transport {
	case MailerConsole:
	case MailerSMTP:
		if c.SMTP.Host == "" {
			return fmt.Errorf("smtp.host is required for mailer transport %q", c.Mailer.Transport)
		}
	case MailerRabbitMQ:
		if c.RabbitMQ.URL == "" {
			return fmt.Errorf("rabbitmq.url is required for mailer transport %q", c.Mailer.Transport)
		}
	default:
		return fmt.Errorf("unknown mailer transport %q", c.Mailer.Transport)
	}
	if c.Pagination.PageSize <= 0 || c.Pagination.MaxPageSize < c.Pagination.PageSize {
		return fmt.Errorf("invalid pagination: page_size=%d max_page_size=%d",
			c.Pagination.PageSize, c.Pagination.MaxPageSize)
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"MigrationsPath: %s\n"+
			"Redis: %s (db %d)\n"+
			"HTTPServer: %s (timeout %s, idle %s)\n"+
			"TokenTTL: %s\n"+
			"Pagination: %d/%d\n"+
			"Mailer: %s\n",
		c.Env,
		c.MigrationsPath,
		c.Redis.Address, c.Redis.DB,
		c.AddressHTTP, c.TimeoutHTTP, c.IdleTimeout,
		c.TokenTTL,
		c.Pagination.PageSize, c.Pagination.MaxPageSize,
		c.Mailer.Transport,
	)
}
