package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/live-claims/internal/config"
	"github.com/iliyamo/live-claims/internal/confirm"
	"github.com/iliyamo/live-claims/internal/database"
	"github.com/iliyamo/live-claims/internal/handler"
	"github.com/iliyamo/live-claims/internal/middleware"
	"github.com/iliyamo/live-claims/internal/model"
	"github.com/iliyamo/live-claims/internal/platform"
	"github.com/iliyamo/live-claims/internal/queue"
	"github.com/iliyamo/live-claims/internal/repository"
	"github.com/iliyamo/live-claims/internal/router"
	"github.com/iliyamo/live-claims/internal/service"
	"github.com/iliyamo/live-claims/internal/state"
)

func main() {
	_ = godotenv.Load() // .env is optional
	cfg := config.Load()

	profile, err := config.LoadProfile(cfg.ProfilePath)
	if err != nil {
		log.Fatalf("show profile: %v", err)
	}

	var db *sql.DB
	switch cfg.DBDriver {
	case "sqlite":
		db, err = database.OpenSQLite(cfg.SQLitePath)
	default:
		db, err = database.OpenMySQL(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	}
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	// The coordinator caches the session pointer and panic flag; they
	// must be warm before any signal or command is handled.
	coord := state.New(repository.NewSettingsRepo(db))
	loadCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = coord.Load(loadCtx)
	cancel()
	if err != nil {
		log.Fatalf("load coordinator state: %v", err)
	}

	bridge := platform.NewBridge(cfg.AMQPURL)
	defer bridge.Close()

	labels := make(map[model.Category]string, len(profile.CategoryLabels))
	for tag, label := range profile.CategoryLabels {
		if cat, perr := model.ParseCategory(tag); perr == nil {
			labels[cat] = label
		}
	}

	engine := service.NewEngine(db, coord, confirm.New(profile.ConfirmWindow()), bridge, platform.NewHTTPFetcher(), service.Options{
		AcceptedSignals: profile.AcceptedSignals,
		CategoryLabels:  labels,
		TierPrefix:      profile.TierPrefix,
	})

	go func() {
		if cerr := queue.StartClaimConsumer(cfg.AMQPURL, engine); cerr != nil {
			log.Printf("claim-consumer: stopped: %v", cerr)
		}
	}()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and response cache disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	staff := repository.NewStaffRepo(db)
	tokens := repository.NewTokenRepo(db)

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, staff, tokens), cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(engine), cfg.JWTSecret)
	router.RegisterPublic(e,
		handler.NewPublicHandler(repository.NewItemRepo(db), repository.NewClaimRepo(db), coord),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, db=%s)", addr, cfg.Env, cfg.DBDriver)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
