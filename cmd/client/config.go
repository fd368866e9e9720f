package main

import "github.com/kelseyhightower/envconfig"

type Config struct {
	ServerURL string `envconfig:"CHAT_SERVER_URL" default:"http://localhost:8080"`
	UserName  string `envconfig:"CHAT_USER_NAME" required:"true"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"INFO"`
	// CHAT_COLOURS enables colorized output for presence and messages
	Colours bool `envconfig:"CHAT_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
