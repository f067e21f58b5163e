package main

import (
	"log"
	"net/http"
	"time"

	"github.com/nbx0021/youtube-analytics-pipeline/internal/app"
	"github.com/nbx0021/youtube-analytics-pipeline/internal/config"
	"github.com/nbx0021/youtube-analytics-pipeline/internal/routes"
)

func main() {

	app, err := app.NewApplication()
	if err != nil {
		log.Fatal("Failed to start application:", err)
	}

	r := routes.SetupRoutes(app)

	defer app.Cache.Close()

	server := &http.Server{
		Addr:         ":" + config.GetEnv("PORT", "8080"),
		Handler:      r,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	app.Logger.Println("Server started on port", server.Addr)

	err = server.ListenAndServe()
	if err != nil {
		app.Logger.Fatal("Error starting server", err)
	}

}
