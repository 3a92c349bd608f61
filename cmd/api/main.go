package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"portfolio-blog-api/core"
)

func main() {
	cfg, err := core.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	ctx := context.Background()

	logCloser, err := core.SetupLogging(cfg, "api.log")
	if err != nil {
		log.Fatalf("failed to setup logging: %v", err)
	}
	defer logCloser.Close()

	db, err := core.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	redisClient, err := core.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer redisClient.Close()

	secret, err := core.ResolveTokenSecret(cfg)
	if err != nil {
		log.Fatalf("failed to resolve token secret: %v", err)
	}

	tokens := core.NewTokenService(secret, time.Duration(cfg.TokenTTLMinutes)*time.Minute)
	hasher := core.NewHashPool(core.NewBcryptHasher(cfg.BcryptCost), cfg.HashConcurrency)

	userRepo := core.NewPgUserRepository(db)
	postRepo := core.NewPgPostRepository(db)
	views := core.NewPostViews(redisClient)
	authService := core.NewRepositoryAuthService(userRepo, hasher, tokens)

	router := core.NewRouter(cfg, tokens, authService, postRepo, views)

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("starting api server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
