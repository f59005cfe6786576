package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fcadmin/matchvote-backend/api/routes"
	"github.com/fcadmin/matchvote-backend/internal/cache"
	"github.com/fcadmin/matchvote-backend/internal/config"
	"github.com/fcadmin/matchvote-backend/internal/handlers"
	"github.com/fcadmin/matchvote-backend/internal/repositories"
	mongorepo "github.com/fcadmin/matchvote-backend/internal/repositories/mongodb"
	"github.com/fcadmin/matchvote-backend/internal/scheduler"
	"github.com/fcadmin/matchvote-backend/internal/services"
	"github.com/fcadmin/matchvote-backend/pkg/jwt"
	"github.com/fcadmin/matchvote-backend/pkg/mongodb"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)

	// Live-tally cache is optional; without Redis every read hits Mongo.
	var tallyCache *cache.TallyCache
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		tallyCache = cache.NewTallyCache(redisClient, cfg.Redis.TallyTTL)
	}

	tokens, err := jwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiresIn)*time.Second)
	if err != nil {
		log.Fatalf("Failed to initialize token manager: %v", err)
	}

	var pollRepo repositories.PollRepository = mongorepo.NewPollRepository(db)
	var templateRepo repositories.PollTemplateRepository = mongorepo.NewPollTemplateRepository(db)
	var eventRepo repositories.MatchEventRepository = mongorepo.NewMatchEventRepository(db)
	var adminRepo repositories.AdminUserRepository = mongorepo.NewAdminUserRepository(db)

	pollService := services.NewPollService(pollRepo, templateRepo, tallyCache)
	voteService := services.NewVoteService(pollRepo, tallyCache)
	templateService := services.NewTemplateService(templateRepo)
	authService := services.NewAuthService(adminRepo, tokens)

	pollScheduler := scheduler.NewPollScheduler(pollService, pollRepo, eventRepo, cfg.Scheduler.TickInterval)
	go pollScheduler.Start()
	defer pollScheduler.Stop()

	handlerDeps := routes.HandlerDependencies{
		AuthHandler:     handlers.NewAuthHandler(authService),
		PollHandler:     handlers.NewPollHandler(pollService),
		VoteHandler:     handlers.NewVoteHandler(voteService),
		TemplateHandler: handlers.NewTemplateHandler(templateService),
		MatchHandler:    handlers.NewMatchHandler(pollScheduler, eventRepo),
	}

	router := routes.SetupRouter(cfg, tokens, handlerDeps)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	log.Printf("Server starting on port %s", cfg.Server.Port)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exiting")
}
