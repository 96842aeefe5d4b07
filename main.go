package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"suggestion-board-backend/cache"
	"suggestion-board-backend/database"
	"suggestion-board-backend/handlers"
	"suggestion-board-backend/mq"
	"suggestion-board-backend/repository"
	"suggestion-board-backend/routes"
	"suggestion-board-backend/service"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; the environment wins when both are set.
	if err := godotenv.Load(); err == nil {
		log.Println("loaded configuration from .env")
	}

	if err := database.InitDB(); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	log.Println("database connection initialized")

	// Redis powers the view cache, locks, rate limits and the event queue.
	// All of them degrade gracefully when it is missing.
	if err := cache.InitRedis(); err != nil {
		log.Printf("warning: redis initialization failed: %v", err)
	}
	cache.InitDistLock()

	// Repositories and services
	boardRepo := repository.NewBoardRepository(database.DB)
	suggestionRepo := repository.NewSuggestionRepository(database.DB)
	voteRepo := repository.NewVoteRepository(database.DB)
	userRepo := repository.NewUserRepository(database.DB)

	var locker service.Locker
	if ls := cache.GetLockService(); ls != nil {
		locker = ls
	}

	projector := service.NewBoardViewProjector(boardRepo, suggestionRepo, voteRepo)

	var viewCache *cache.BoardViewCache
	if _, err := cache.GetClient(); err == nil {
		viewCache = cache.NewBoardViewCache(cache.GetLockService())
	}

	events := mq.InitEventQueue(mq.InvalidationHandler(viewCache))

	var publisher service.EventPublisher
	if events != nil {
		publisher = events
	}

	boardService := service.NewBoardService(boardRepo, publisher)
	suggestionService := service.NewSuggestionService(suggestionRepo, boardRepo, publisher)
	voteService := service.NewVoteService(voteRepo, suggestionRepo, boardRepo, locker, publisher)

	// Seed the board existence filter so lookups for never-created IDs
	// short-circuit before the database.
	if ids, err := boardRepo.ListBoardIDs(context.Background()); err == nil {
		cache.InitBoardFilter(ids)
	} else {
		log.Printf("warning: failed to load board ids for the existence filter: %v", err)
	}

	h := handlers.NewHandlers(boardService, suggestionService, voteService, userRepo, projector, viewCache, events)

	router := routes.SetupRouter(h)
	srv := routes.StartServer(router)

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced server shutdown: %v", err)
	}

	events.Close()
	database.CloseDB()
	cache.CloseRedis()

	log.Println("server stopped")
}
