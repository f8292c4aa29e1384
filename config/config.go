package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type DB struct {
	Host string
	Port int
	User string
	Pass string
	Name string
}

type HTTP struct {
	Host string
	Port int
}

type Redis struct {
	Addr           string
	Password       string
	DB             int
	HealthCacheTTL int // seconds; 0 disables the cache
}

type Queue struct {
	// DeadLetterAfterRetries has no safe default; operators must choose it.
	DeadLetterAfterRetries int
}

type Scheduler struct {
	PollInterval int // seconds
	// JobLeaseTTL has no safe default; operators must choose it.
	JobLeaseTTL int // seconds
}

type Monitor struct {
	Interval int // seconds
}

type Config struct {
	HTTP      HTTP
	DB        DB
	Redis     Redis
	Queue     Queue
	Scheduler Scheduler
	Monitor   Monitor
	JWT       struct {
		Secret string
		Issuer string
		ExpMin int
	}
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("server.http.host", "0.0.0.0")
	v.SetDefault("server.http.port", 9300)
	v.SetDefault("server.db.host", "127.0.0.1")
	v.SetDefault("server.db.port", 3306)
	v.SetDefault("server.db.user", "root")
	v.SetDefault("server.db.pass", "")
	v.SetDefault("server.db.name", "attendsync")
	v.SetDefault("server.redis.addr", "")
	v.SetDefault("server.redis.db", 0)
	v.SetDefault("server.redis.health_cache_ttl", 30)
	v.SetDefault("server.monitor.interval", 300)
	v.SetDefault("server.scheduler.poll_interval", 60)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{
		HTTP: HTTP{Host: v.GetString("server.http.host"), Port: v.GetInt("server.http.port")},
		DB: DB{
			Host: v.GetString("server.db.host"),
			Port: v.GetInt("server.db.port"),
			User: v.GetString("server.db.user"),
			Pass: v.GetString("server.db.pass"),
			Name: v.GetString("server.db.name"),
		},
		Redis: Redis{
			Addr:           v.GetString("server.redis.addr"),
			Password:       v.GetString("server.redis.password"),
			DB:             v.GetInt("server.redis.db"),
			HealthCacheTTL: v.GetInt("server.redis.health_cache_ttl"),
		},
		Queue: Queue{
			DeadLetterAfterRetries: v.GetInt("server.queue.dead_letter_after_retries"),
		},
		Scheduler: Scheduler{
			PollInterval: v.GetInt("server.scheduler.poll_interval"),
			JobLeaseTTL:  v.GetInt("server.scheduler.job_lease_ttl_sec"),
		},
		Monitor: Monitor{Interval: v.GetInt("server.monitor.interval")},
	}

	// No defensible default exists for either knob, so refuse to start without them.
	if cfg.Queue.DeadLetterAfterRetries <= 0 {
		return nil, fmt.Errorf("config: server.queue.dead_letter_after_retries is required")
	}
	if cfg.Scheduler.JobLeaseTTL <= 0 {
		return nil, fmt.Errorf("config: server.scheduler.job_lease_ttl_sec is required")
	}

	cfg.JWT.Secret = v.GetString("server.jwt.secret")
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = "dev-secret"
	}
	cfg.JWT.Issuer = v.GetString("server.jwt.issuer")
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "attendsync"
	}
	cfg.JWT.ExpMin = v.GetInt("server.jwt.exp_min")
	if cfg.JWT.ExpMin <= 0 {
		cfg.JWT.ExpMin = 60
	}
	return cfg, nil
}
