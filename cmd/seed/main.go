package main

import (
	"context"
	"flag"
	"log"
	"time"

	"breakroom/internal/cache"
	"breakroom/internal/config"
	"breakroom/internal/database"
	"breakroom/internal/seed"
)

func main() {
	force := flag.Bool("force", false, "seed even if a prior run completed")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	cache.InitRedis(cfg.RedisURL)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	seeder := seed.NewSeeder(db, cache.GetClient())
	if err := seeder.Run(ctx, *force); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Demo data ready. Log in with any *@breakroom.dev account, password %q.", seed.DemoPassword)
}
