package main

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/linktrend/internal/auth"
	"github.com/iliyamo/linktrend/internal/config"
	"github.com/iliyamo/linktrend/internal/database"
	"github.com/iliyamo/linktrend/internal/handler"
	"github.com/iliyamo/linktrend/internal/middleware"
	"github.com/iliyamo/linktrend/internal/queue"
	"github.com/iliyamo/linktrend/internal/repository"
	"github.com/iliyamo/linktrend/internal/router"
	"github.com/iliyamo/linktrend/internal/session"
	"github.com/iliyamo/linktrend/internal/storage"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		// Sessions live in Redis; without it nobody can sign in.
		log.Fatal("redis: connection required for session storage")
	}
	defer rdb.Close()

	sessions := session.NewStore(rdb, time.Duration(cfg.SessionTTLHours)*time.Hour)

	users := repository.NewUserRepo(db)
	videos := repository.NewVideoRepo(db)
	transactions := repository.NewTransactionRepo(db)

	bunny := storage.NewBunnyClient(cfg.BunnyZone, cfg.BunnyAPIKey, cfg.BunnyCDNHost)
	verifier := auth.NewGoogleVerifier(cfg.GoogleClientID)

	authH := handler.NewAuthHandler(cfg, users, sessions, verifier)
	videoH := handler.NewVideoHandler(videos, users, bunny)
	uploadH := handler.NewUploadHandler(bunny)
	trxH := handler.NewTransactionHandler(transactions, videos, users)
	userH := handler.NewUserHandler(users)

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.WithSession(sessions))

	admin := router.AdminGroup(e, users, cfg.AdminEmail)
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH)
	router.RegisterVideos(e, admin, videoH)
	router.RegisterUploads(e, uploadH)
	router.RegisterTransactions(e, admin, trxH, limiter)
	router.RegisterUsers(admin, userH)

	go func() {
		if err := queue.StartPaymentConsumer(); err != nil {
			log.Printf("payment consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
