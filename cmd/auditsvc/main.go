package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"

	config "github.com/avvvet/draftboard-services/configs"
	"github.com/avvvet/draftboard-services/internal/auditsvc/broker"
	"github.com/avvvet/draftboard-services/internal/auditsvc/handlers"
	"github.com/avvvet/draftboard-services/internal/auditsvc/store"
	boardbroker "github.com/avvvet/draftboard-services/internal/boardsvc/broker"
	"github.com/avvvet/draftboard-services/internal/db"
	nats "github.com/avvvet/draftboard-services/internal/nats"
)

const (
	SERVICE_NAME = "audit"
	activityTTL  = 7 * 24 * time.Hour
)

var instanceId string

func init() {
	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {
	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		log.Fatal("JWT_SECRET_KEY is not set")
	}
	port := os.Getenv("AUDIT_SERVICE_PORT")
	if port == "" {
		port = "8081"
	}
	rateLimit := 120
	if v := os.Getenv("RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			log.Fatalf("Invalid RATE_LIMIT value: %q", v)
		}
		rateLimit = n
	}

	// mongo connection
	mdb, err := db.ConnectToDB(os.Getenv("MONGODB_URI"))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer db.Disconnect(mdb)

	idxCtx, cancelIdx := context.WithTimeout(context.Background(), 30*time.Second)
	err = db.CreateTTLIndexForCollection(idxCtx, mdb, store.ActivityCollection)
	cancelIdx()
	if err != nil {
		log.Fatalf("Failed to create TTL index: %v", err)
	}
	activityStore := store.NewActivityStore(mdb, activityTTL)
	log.Printf("mongo connection established successfully")

	// Connect to NATS
	n, err := nats.Connect(os.Getenv("NATS_URL"), os.Getenv("NATS_TOKEN"), SERVICE_NAME+"_service_"+instanceId)
	if err != nil {
		log.Fatalf("Error: unable to connect to NATS server %v", err)
	}
	defer n.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	sub, err := broker.NewBroker(n.Conn, activityStore).Subscribe(boardbroker.ActivitySubject)
	if err != nil {
		log.Fatalf("Error: unable to subscribe to %s: %v", boardbroker.ActivitySubject, err)
	}

	// Setup router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(config.CORS().Handler)
	r.Use(httprate.LimitByIP(rateLimit, 1*time.Minute))

	h := handlers.NewHandler(activityStore, jwtauth.New("HS256", []byte(jwtKey), nil), port)
	h.SetRoutes(r)

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	sub.Unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("%s service shutdown failed: %+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
