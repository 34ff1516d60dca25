// Package config предоставляет структуры и функцию для парсинга и загрузки конфига.
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	CronSecret              string `yaml:"cron_secret" env:"CRON_SECRET"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	RabbitMQ                `yaml:"rabbitmq"`
	Identity                `yaml:"identity"`
	Gateway                 `yaml:"gateway"`
	EmailAPI                `yaml:"email_api"`
	AI                      `yaml:"ai"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"30s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// RabbitMQ структура для настройки подключения к брокеру уведомлений
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"3s"`
}

// Identity структура для интеграции с внешним провайдером аутентификации.
// JWTSecret — общий секрет HS256, которым провайдер подписывает токены пользователей.
type Identity struct {
	JWTSecret  string `yaml:"jwt_secret" env:"IDENTITY_JWT_SECRET"`
	BaseURL    string `yaml:"base_url"`
	ServiceKey string `yaml:"service_key" env:"IDENTITY_SERVICE_KEY"`
	SiteURL    string `yaml:"site_url"`
	HookSecret string `yaml:"hook_secret" env:"IDENTITY_HOOK_SECRET"`
}

// Gateway структура для настройки платёжного шлюза
type Gateway struct {
	GatewayKey    string `yaml:"key" env:"GATEWAY_KEY"`
	GatewaySecret string `yaml:"secret" env:"GATEWAY_SECRET"`
	GatewayURL    string `yaml:"base_url"`
	CallbackURL   string `yaml:"callback_url"`
	IPNURL        string `yaml:"ipn_url"`
	ResultURL     string `yaml:"result_url"`
}

// EmailAPI структура для настройки транзакционного email-сервиса
type EmailAPI struct {
	EmailAPIKey  string `yaml:"key" env:"EMAIL_API_KEY"`
	EmailAPIURL  string `yaml:"base_url"`
	EmailFrom    string `yaml:"from"`
	ContactInbox string `yaml:"contact_inbox"`
}

// AI структура для настройки клиента генеративной модели
type AI struct {
	AIKey   string `yaml:"key" env:"AI_API_KEY"`
	AIModel string `yaml:"model" env-default:"gemini-2.0-flash"`
}

// MustLoad загружает конфиг по пути из CONFIG_PATH и завершает процесс при ошибке.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
