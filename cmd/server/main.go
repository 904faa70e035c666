package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/IkhsanBuuddii/moveandcleanweb/internal/config"
	"github.com/IkhsanBuuddii/moveandcleanweb/internal/db"
	"github.com/IkhsanBuuddii/moveandcleanweb/internal/hub"
	"github.com/IkhsanBuuddii/moveandcleanweb/internal/logger"
	"github.com/IkhsanBuuddii/moveandcleanweb/internal/server"
	"github.com/IkhsanBuuddii/moveandcleanweb/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: os.Getenv("LOG_LEVEL")})
	log.Info().Str("env", cfg.App.Env).Str("backend", cfg.DB.Backend).Msg("starting")

	var st store.Store
	switch cfg.DB.Backend {
	case "memory":
		st = store.NewMemory()
	default:
		pool, err := db.Connect(context.Background(), cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("connect database")
		}
		defer pool.Close()
		st = store.NewPostgres(pool)
	}

	h := hub.New(log)
	e := server.New(server.Deps{Cfg: cfg, Store: st, Hub: h, Log: log})

	if err := e.Start(cfg.HTTP.Addr()); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
