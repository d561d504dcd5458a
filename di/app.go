package di

import (
	"roomsense/infras/kafka"
	"roomsense/transport/http"
	"roomsense/transport/mqtt"
)

// App holds the entrypoints sharing one set of infrastructure clients.
type App struct {
	HTTP       *http.HTTP
	Subscriber *mqtt.Subscriber
	Kafka      kafka.Client
}
