package main

import "time"

type Config struct {
	Host              string        `env:"NOTIFY_HOST,default=0.0.0.0"`
	Port              int           `env:"NOTIFY_PORT,default=6687"`
	DatabaseURL       string        `env:"NOTIFY_DATABASE_URL,required=true"`
	PublicKeyFile     string        `env:"NOTIFY_PUBLIC_KEY_FILE,required=true"`
	ChannelCapacity   int           `env:"NOTIFY_CHANNEL_CAPACITY,default=256"`
	KeepaliveInterval time.Duration `env:"NOTIFY_KEEPALIVE_INTERVAL,default=30s"`
	MetricInterval    time.Duration `env:"NOTIFY_METRIC_INTERVAL,default=15s"`
	RestartInterval   time.Duration `env:"NOTIFY_RESTART_INTERVAL,default=200ms"`
	ShutdownTimeout   time.Duration `env:"NOTIFY_SHUTDOWN_TIMEOUT,default=5s"`
	LogLevel          string        `env:"LOG_LEVEL,default=INFO"`
}
