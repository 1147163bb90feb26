package main

import "time"

type Config struct {
	ServerURL    string        `envconfig:"SERVER_URL" default:"http://localhost:8080"`
	Token        string        `envconfig:"TOKEN" required:"true"`
	PeerID       string        `envconfig:"PEER_ID"`
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"3s"`
	HTTPTimeout  time.Duration `envconfig:"HTTP_TIMEOUT" default:"5s"`
}
