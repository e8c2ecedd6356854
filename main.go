package main

import (
	"net/http"
	"os"

	"collabdocs/config/database"
	accessrepo "collabdocs/internal/access/repository"
	accesssvc "collabdocs/internal/access/service"
	presencerepo "collabdocs/internal/presence/repository"
	presencesvc "collabdocs/internal/presence/service"
	"collabdocs/pkg/logger"
	"collabdocs/router"
	"collabdocs/socket"

	"github.com/joho/godotenv"
)

func main() {
	logger.Init()
	defer logger.Log.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Sugar.Info("No .env file found, using environment variables from OS")
	}

	db := database.Connect()
	defer db.Close()
	database.Migrate(db)

	accessService := accesssvc.NewAccessService(accessrepo.NewAccessRepository(db))
	presenceService := presencesvc.NewPresenceService(presencerepo.NewPresenceRepository(db))

	hub := socket.NewHub(presenceService)
	go hub.Run()

	handler := router.Setup(db, hub, accessService, presenceService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Sugar.Infof("Backend listening on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		logger.Sugar.Fatalf("Server stopped: %v", err)
	}
}
