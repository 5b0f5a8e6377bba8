package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"chatrelay/internal/config"
	"chatrelay/internal/handlers"
	"chatrelay/internal/infrastructure/redis"
	"chatrelay/internal/middleware"
	"chatrelay/internal/services"
	"chatrelay/internal/services/history"
	"chatrelay/internal/services/registry"
	"chatrelay/internal/services/relay"
)

func main() {
	// Populate the environment from .env when present; real deployments set
	// the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Info().Msg("Loaded environment from .env file")
	}

	ctx := context.Background()
	svcs := services.InitializeServices(ctx)
	defer svcs.Shutdown()

	r := setupRouter(
		svcs.GetRegistryService(),
		svcs.GetRelayService(),
		svcs.GetHistoryService(),
		svcs.GetRedisService(),
	)

	port := config.GetServerPort()
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Info().Str("port", port).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

func setupRouter(registryService *registry.Service, relayService *relay.Service, historyService *history.Service, redisService *redis.Service) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	registerUser := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		handlers.HandleRegisterUser(registryService, w, req)
	})
	chat := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		handlers.HandleChat(relayService, w, req)
	})
	getMessages := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		handlers.HandleGetMessages(historyService, w, req)
	})

	r.Handle("/register-user", middleware.RateLimit("register_user", redisService)(registerUser)).Methods("POST")
	r.Handle("/chat", middleware.RateLimit("chat", redisService)(chat)).Methods("POST")
	r.Handle("/get-messages", middleware.RateLimit("get_messages", redisService)(getMessages)).Methods("POST")
	r.HandleFunc("/health", handlers.HandleHealth).Methods("GET")

	return cors.Handler(cors.Options{
		AllowedOrigins: config.GetAllowedOrigins(),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	})(r)
}
