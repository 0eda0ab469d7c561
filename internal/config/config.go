package config

import (
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppConfig struct {
	Env          string        `mapstructure:"env"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type MongoConfig struct {
	URI                string `mapstructure:"uri"`
	Database           string `mapstructure:"database"`
	UsersCollection    string `mapstructure:"users_collection"`
	RequestsCollection string `mapstructure:"requests_collection"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret        string `mapstructure:"secret"`
	AccessTTLDays int    `mapstructure:"access_ttl_days"`
}

type SMSConfig struct {
	AccountSID string `mapstructure:"account_sid"`
	AuthToken  string `mapstructure:"auth_token"`
	From       string `mapstructure:"from"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type Config struct {
	App   AppConfig   `mapstructure:"app"`
	Mongo MongoConfig `mapstructure:"mongodb"`
	Redis RedisConfig `mapstructure:"redis"`
	JWT   JWTConfig   `mapstructure:"jwt"`
	SMS   SMSConfig   `mapstructure:"sms"`
	Kafka KafkaConfig `mapstructure:"kafka"`

	// InsecureJWTSecret is set when no secret was configured and the
	// built-in development fallback is in use. Callers should warn loudly.
	InsecureJWTSecret bool
}

// insecureDefaultSecret keeps local development working without a .env.
// Known hardening gap: production deployments must set JWT_SECRET.
const insecureDefaultSecret = "make-my-buddy-dev-secret"

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()

	v.BindEnv("app.env", "APP_ENV")
	v.BindEnv("app.port", "APP_PORT")
	v.BindEnv("mongodb.uri", "MONGO_URI")
	v.BindEnv("mongodb.database", "MONGO_DB")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("jwt.secret", "JWT_SECRET")
	v.BindEnv("sms.account_sid", "SMS_ACCOUNT_SID")
	v.BindEnv("sms.auth_token", "SMS_AUTH_TOKEN")
	v.BindEnv("sms.from", "SMS_FROM")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// sensible defaults
	if cfg.App.Port == 0 {
		cfg.App.Port = 8080
	}
	if cfg.App.ReadTimeout == 0 {
		cfg.App.ReadTimeout = 10 * time.Second
	}
	if cfg.App.WriteTimeout == 0 {
		cfg.App.WriteTimeout = 10 * time.Second
	}
	if cfg.App.IdleTimeout == 0 {
		cfg.App.IdleTimeout = 60 * time.Second
	}
	if cfg.Mongo.UsersCollection == "" {
		cfg.Mongo.UsersCollection = "users"
	}
	if cfg.Mongo.RequestsCollection == "" {
		cfg.Mongo.RequestsCollection = "buddy_requests"
	}
	if cfg.JWT.AccessTTLDays == 0 {
		cfg.JWT.AccessTTLDays = 365
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "relationship.events"
	}
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = insecureDefaultSecret
		cfg.InsecureJWTSecret = true
	}

	if cfg.Mongo.URI == "" {
		return nil, errors.New("MONGO_URI is required")
	}
	if cfg.Redis.Addr == "" {
		return nil, errors.New("REDIS_ADDR is required")
	}

	return &cfg, nil
}
