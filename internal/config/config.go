package config

import (
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Env  string `mapstructure:"env"`
	Port int    `mapstructure:"port"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type KafkaConfig struct {
	Brokers          []string `mapstructure:"brokers"`
	TopicMessageSent string   `mapstructure:"topic_message_sent"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type TranslationConfig struct {
	Endpoint         string  `mapstructure:"endpoint"`
	TimeoutSeconds   int     `mapstructure:"timeout_seconds"`
	CacheTTLSeconds  int     `mapstructure:"cache_ttl_seconds"`
	CacheBackend     string  `mapstructure:"cache_backend"` // memory or redis
	FallbackLanguage string  `mapstructure:"fallback_language"`
	RatePerSecond    float64 `mapstructure:"rate_per_second"`
	RateBurst        int     `mapstructure:"rate_burst"`
}

type WSConfig struct {
	PingIntervalSeconds  int   `mapstructure:"ping_interval_seconds"`
	WriteDeadlineSeconds int   `mapstructure:"write_deadline_seconds"`
	ReadDeadlineSeconds  int   `mapstructure:"read_deadline_seconds"`
	MaxMessageSizeBytes  int64 `mapstructure:"max_message_size_bytes"`
	SendBuffer           int   `mapstructure:"send_buffer"`
}

type RateLimitConfig struct {
	Requests      int `mapstructure:"requests"`
	WindowSeconds int `mapstructure:"window_seconds"`
}

type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Mongo       MongoConfig       `mapstructure:"mongo"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Kafka       KafkaConfig       `mapstructure:"kafka"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	Translation TranslationConfig `mapstructure:"translation"`
	WS          WSConfig          `mapstructure:"ws"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`

	// derived
	TranslationTimeout time.Duration
	CacheTTL           time.Duration
	PingInterval       time.Duration
	WriteDeadline      time.Duration
	ReadDeadline       time.Duration
	RateLimitWindow    time.Duration
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	applyDefaults(&c)
	return &c, nil
}

func applyDefaults(c *Config) {
	if c.App.Port == 0 {
		c.App.Port = 8080
	}
	if c.Mongo.URI == "" {
		c.Mongo.URI = "mongodb://localhost:27017"
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "multilingual-chat"
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "chat"
	}
	if c.Kafka.TopicMessageSent == "" {
		c.Kafka.TopicMessageSent = "chat.message-sent"
	}
	if c.Translation.Endpoint == "" {
		c.Translation.Endpoint = "https://translate.googleapis.com/translate_a/single"
	}
	if c.Translation.TimeoutSeconds == 0 {
		c.Translation.TimeoutSeconds = 5
	}
	if c.Translation.CacheTTLSeconds == 0 {
		c.Translation.CacheTTLSeconds = 300
	}
	if c.Translation.CacheBackend == "" {
		c.Translation.CacheBackend = "memory"
	}
	if c.Translation.FallbackLanguage == "" {
		c.Translation.FallbackLanguage = "en"
	}
	if c.Translation.RatePerSecond == 0 {
		c.Translation.RatePerSecond = 10
	}
	if c.Translation.RateBurst == 0 {
		c.Translation.RateBurst = 20
	}
	if c.WS.PingIntervalSeconds == 0 {
		c.WS.PingIntervalSeconds = 25
	}
	if c.WS.WriteDeadlineSeconds == 0 {
		c.WS.WriteDeadlineSeconds = 10
	}
	if c.WS.ReadDeadlineSeconds == 0 {
		c.WS.ReadDeadlineSeconds = 60
	}
	if c.WS.MaxMessageSizeBytes == 0 {
		c.WS.MaxMessageSizeBytes = 65536
	}
	if c.WS.SendBuffer == 0 {
		c.WS.SendBuffer = 256
	}
	if c.RateLimit.Requests == 0 {
		c.RateLimit.Requests = 100
	}
	if c.RateLimit.WindowSeconds == 0 {
		c.RateLimit.WindowSeconds = 900
	}

	c.TranslationTimeout = time.Duration(c.Translation.TimeoutSeconds) * time.Second
	c.CacheTTL = time.Duration(c.Translation.CacheTTLSeconds) * time.Second
	c.PingInterval = time.Duration(c.WS.PingIntervalSeconds) * time.Second
	c.WriteDeadline = time.Duration(c.WS.WriteDeadlineSeconds) * time.Second
	c.ReadDeadline = time.Duration(c.WS.ReadDeadlineSeconds) * time.Second
	c.RateLimitWindow = time.Duration(c.RateLimit.WindowSeconds) * time.Second
}
