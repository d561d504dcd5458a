package handler

import (
	"net/http"
	"roomsense/config"
	"roomsense/di"
	"roomsense/shared/logger"
	"sync"
)

var (
	app  *di.App
	once sync.Once
)

// Handler serves the HTTP API from a serverless entrypoint. Motion readings
// arrive over HTTP only in this mode.
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		cfg := config.Get()

		logger.InitLogger(cfg)

		logger.SetLogLevel(cfg)

		app = di.InitializeService()
	})

	r.RequestURI = r.URL.String()

	app.HTTP.ServeHTTP(w, r)
}
