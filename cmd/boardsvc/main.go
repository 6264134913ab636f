package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"

	config "github.com/avvvet/draftboard-services/configs"
	"github.com/avvvet/draftboard-services/internal/boardsvc/broker"
	"github.com/avvvet/draftboard-services/internal/boardsvc/catalog"
	svcconfig "github.com/avvvet/draftboard-services/internal/boardsvc/config"
	"github.com/avvvet/draftboard-services/internal/boardsvc/db"
	"github.com/avvvet/draftboard-services/internal/boardsvc/handlers"
	"github.com/avvvet/draftboard-services/internal/boardsvc/service"
	"github.com/avvvet/draftboard-services/internal/boardsvc/store"
	"github.com/avvvet/draftboard-services/internal/boardsvc/ws"
	nats "github.com/avvvet/draftboard-services/internal/nats"
)

const SERVICE_NAME = "board"

var instanceId string

func init() {
	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {
	cfg, err := svcconfig.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		cat, err = catalog.Load(cfg.CatalogPath, cfg.AssetsDir)
		if err != nil {
			log.Fatalf("Failed to load catalog: %v", err)
		}
	}

	tokenAuth := jwtauth.New("HS256", []byte(cfg.JWTSecret), nil)

	// pg connection, or a board that lives in memory only
	var (
		boardService *service.BoardService
		userService  *service.UserService
	)
	if cfg.DBUrl != "" {
		dbpool, err := db.Connect(cfg.DBUrl)
		if err != nil {
			log.Fatalf("Failed to connect to DB: %v", err)
		}
		defer db.ClosePool()
		log.Printf("pg connection established successfully")

		boardService = service.NewBoardService(store.NewBoardStore(dbpool), store.NewCatalogStore(dbpool), store.NewSystemStore(dbpool))
		userService = service.NewUserService(store.NewUserStore(dbpool), tokenAuth, cfg.TokenTTL)
	} else {
		log.Warn("POSTGRES_URL is not set, the board is kept in memory only")
		boardService = service.NewMemoryBoardService()
		userService = service.NewUserService(store.NewMemoryUserStore(), tokenAuth, cfg.TokenTTL)
	}

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	b, err := boardService.Load(loadCtx, service.LoadOptions{
		BoardID:     cfg.BoardID,
		DraftType:   cfg.DraftType,
		TotalRounds: cfg.TotalRounds,
		Catalog:     cat,
	})
	cancelLoad()
	if err != nil {
		log.Fatalf("Failed to load board: %v", err)
	}

	// NATS is optional; without it the activity feed is not archived
	var publisher broker.Publisher
	n, err := nats.Connect(cfg.NatsUrl, cfg.NatsToken, SERVICE_NAME+"_service_"+instanceId)
	if err != nil {
		log.Warnf("unable to connect to NATS server, activity is not archived: %v", err)
	} else {
		defer n.Close()
		publisher = n
		log.Printf("NATS connection established successfully %s", n.Url)
	}

	registry := ws.NewWs()
	brk := broker.NewBroker(b, registry, userService, broker.Options{
		Publisher:   publisher,
		ChatHistory: cfg.ChatHistory,
	})
	loopCtx, stopLoop := context.WithCancel(context.Background())
	loopDone := make(chan struct{})
	go func() {
		brk.Run(loopCtx)
		close(loopDone)
	}()

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(c.Handler)

	// to protect the service api from any over requests
	r.Use(httprate.LimitByIP(cfg.RateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(registry, brk, tokenAuth, cfg.Port)
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("%s service shutdown failed: %+v", SERVICE_NAME, err)
	}
	registry.CloseAll()
	stopLoop()
	<-loopDone
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
