package main

import (
	"time"

	"github.com/darshakvaddoriya6/youtube-backend/config"
	"github.com/darshakvaddoriya6/youtube-backend/models"
	"github.com/darshakvaddoriya6/youtube-backend/routes"
	"github.com/darshakvaddoriya6/youtube-backend/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Video{},
		&models.View{},
		&models.Comment{},
		&models.Like{},
		&models.Subscription{},
		&models.Playlist{},
		&models.PlaylistVideo{},
		&models.Tweet{},
		&models.WatchHistory{},
		&models.WatchLater{},
	)

	r := routes.SetupRouter(db)

	// Drop stale anonymous view rows in the background (best-effort)
	utils.StartViewLedgerPruner(15 * time.Minute)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
