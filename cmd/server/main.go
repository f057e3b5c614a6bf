package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/aryabov/movify/internal/bootstrap"
	"github.com/aryabov/movify/internal/catalog"
	"github.com/aryabov/movify/internal/config"
	"github.com/aryabov/movify/internal/events"
	"github.com/aryabov/movify/internal/handlers"
	"github.com/aryabov/movify/internal/logging"
	authmw "github.com/aryabov/movify/internal/middleware/auth"
	loggingmw "github.com/aryabov/movify/internal/middleware/logging"
	"github.com/aryabov/movify/internal/perms"
	"github.com/aryabov/movify/internal/repo"
	"github.com/aryabov/movify/internal/search"
	"github.com/aryabov/movify/internal/service"
	httpserver "github.com/aryabov/movify/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmpty(configuration.ACCESS_TOKEN_SECRET, "ACCESS_TOKEN_SECRET")

	logger := logging.New(configuration.LogLevel)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	table := perms.Default()
	if configuration.PERMISSIONS_FILE != "" {
		table, err = perms.LoadFile(configuration.PERMISSIONS_FILE)
		if err != nil {
			log.Fatal(err)
		}
	}

	r := repo.New(db)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := bootstrap.EnsureDefaultAdmin(
		logging.IntoContext(startupCtx, logger),
		r,
		configuration.DEFAULT_ADMIN_USERNAME,
		configuration.DEFAULT_ADMIN_HASHED_PASSWORD,
	); err != nil {
		startupCancel()
		log.Fatalf("admin bootstrap error: %v", err)
	}
	startupCancel()

	prod := events.NewProducer([]string{configuration.KAFKA_ADDRESS})

	var movieIndex *search.MovieIndex
	if configuration.ES_URL != "" {
		esClient, err := search.NewClient(configuration)
		if err != nil {
			log.Fatal(err)
		}
		movieIndex = search.NewMovieIndex(esClient, "movies")
	} else {
		movieIndex = search.NewMovieIndex(nil, "movies")
	}

	svc := &service.AuthService{
		Repo:      r,
		Perms:     table,
		JWTSecret: []byte(configuration.ACCESS_TOKEN_SECRET),
		TokenTTL:  configuration.TokenTTL,
	}
	guard := authmw.NewGuard(svc)

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		Guard:               guard,
		AuthHandler:         &handlers.AuthHandler{Svc: svc, Producer: prod},
		UserHandler:         &handlers.UserHandler{Svc: svc, Repo: r, Producer: prod},
		MovieHandler:        &handlers.MovieHandler{Repo: r, Producer: prod, Index: movieIndex, Catalog: catalog.NewTVMazeClient("")},
		MemberHandler:       &handlers.MemberHandler{Repo: r, Producer: prod, Catalog: catalog.NewPlaceholderClient("")},
		SubscriptionHandler: &handlers.SubscriptionHandler{Repo: r, Producer: prod},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", configuration.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
