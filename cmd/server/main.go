package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/vernard/PostReviewer/internal/config"
	"github.com/vernard/PostReviewer/internal/db"
	"github.com/vernard/PostReviewer/internal/handler"
	"github.com/vernard/PostReviewer/internal/mailer"
	"github.com/vernard/PostReviewer/internal/router"
	"github.com/vernard/PostReviewer/internal/service"
)

func main() {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg := config.Load()

	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	notifier := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	api := handler.NewAPI(db.DB, &cfg, notifier, service.FFmpegProcessor{})

	r := router.Setup(api, &cfg)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
