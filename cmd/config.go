package main

import "time"

type Config struct {
	Host              string        `env:"HOST,default=localhost"`
	Port              int           `env:"PORT,default=8080"`
	GrpcPort          int           `env:"GRPC_PORT,default=9090"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel          string        `env:"LOG_LEVEL,required=true"`
	SessionSecret     string        `env:"SESSION_SECRET,required=true"`
	SessionTTL        time.Duration `env:"SESSION_TTL,default=1h"`
	SinkCapacity      int           `env:"SINK_CAPACITY,default=10"`
	CommandBufferSize int           `env:"COMMAND_BUFFER_SIZE,default=256"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL,default=5s"`
	HealthInterval    time.Duration `env:"HEALTH_INTERVAL,default=10s"`
	HealthTimeout     time.Duration `env:"HEALTH_TIMEOUT,default=2s"`
	SinkTimeout       time.Duration `env:"SINK_TIMEOUT,default=1s"`
	StoreTimeout      time.Duration `env:"STORE_TIMEOUT,default=5s"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	MaxMessageLength  int           `env:"MAX_MESSAGE_LENGTH,default=2000"`
	AllowedOrigin     string        `env:"ALLOWED_ORIGIN,default=*"`
}
