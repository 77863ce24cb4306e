package main

import (
	"crypto/tls"
	"log"
	"net/http"

	"church-hub/internal/config"
	"church-hub/internal/db"
	"church-hub/internal/handlers"
	"church-hub/internal/services"
	"church-hub/internal/ws"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	// Initialize database
	if err := db.InitDatabase(cfg.DBPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize services
	songService := services.NewSongService(db.DB)
	queueService := services.NewQueueService(db.DB)
	bibleService := services.NewBibleService(db.DB)
	midiService := services.NewMIDIService(nil)
	presentationService := services.NewPresentationService(songService, queueService, bibleService)

	// Initialize fan-out hub and wire publishers
	hub := ws.NewHub(midiService)
	presentationService.SetPublisher(hub)
	midiService.SetPublisher(hub)
	go hub.Run()

	// Initialize handlers
	presentationHandler := handlers.NewPresentationHandler(presentationService)
	songHandler := handlers.NewSongHandler(songService)
	midiHandler := handlers.NewMIDIHandler(midiService)

	// Setup routes
	router := handlers.SetupRoutes(presentationHandler, songHandler, midiHandler, hub)

	// Configure server
	server := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.Port,
		Handler: router,
	}

	// Configure TLS if enabled
	if cfg.TLS.Enabled {
		server.TLSConfig = &tls.Config{
			MinVersion: getTLSVersion(cfg.TLS.MinVersion),
		}

		log.Printf("Starting HTTPS server on %s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("TLS Certificate: %s", cfg.TLS.CertFile)
		log.Printf("TLS Key: %s", cfg.TLS.KeyFile)
		log.Printf("TLS Min Version: %s", cfg.TLS.MinVersion)

		log.Fatal(server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile))
	} else {
		log.Printf("Starting HTTP server on %s:%s", cfg.Server.Host, cfg.Server.Port)

		log.Fatal(server.ListenAndServe())
	}
}

// getTLSVersion converts string version to tls.Version constant
func getTLSVersion(version string) uint16 {
	switch version {
	case "1.0":
		return tls.VersionTLS10
	case "1.1":
		return tls.VersionTLS11
	case "1.2":
		return tls.VersionTLS12
	case "1.3":
		return tls.VersionTLS13
	default:
		return tls.VersionTLS12
	}
}
