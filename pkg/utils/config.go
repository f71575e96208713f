package utils

import "os"

type ServerConfig struct {
	HTTPAddr   string
	EventsAddr string
}

func LoadServerConfig() ServerConfig {
	httpAddr := os.Getenv("SPOTLIGHT_HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	eventsAddr := os.Getenv("SPOTLIGHT_EVENTS_ADDR")
	if eventsAddr == "" {
		eventsAddr = ":7070"
	}

	return ServerConfig{
		HTTPAddr:   httpAddr,
		EventsAddr: eventsAddr,
	}
}
