// Package main is the admin bootstrap CLI. It creates a user carrying
// the ADMIN role, attached to a randomly picked subscription, and
// prints the generated API key once.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"github.com/cardvault/cardvault/internal/model"
	"github.com/cardvault/cardvault/internal/repository"
	"github.com/cardvault/cardvault/internal/service"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s <email>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	email := flag.Arg(0)
	if email == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx := context.Background()

	repo, err := repository.New(ctx, databaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	users := service.NewUserService(repo, nil, nil)

	subs, err := repo.ListSubscriptions(ctx)
	if err != nil {
		logger.Error("failed to list subscriptions", "error", err)
		os.Exit(1)
	}
	if len(subs) == 0 {
		logger.Error("no subscriptions exist; seed the database first")
		os.Exit(1)
	}
	sub := subs[rand.Intn(len(subs))]

	admin, err := users.Register(ctx, service.RegisterInput{
		Email:          email,
		SubscriptionID: sub.ID,
		Roles:          []string{model.RoleUser, model.RoleAdmin},
	})
	if err != nil {
		if ve, ok := service.AsValidationError(err); ok {
			for _, violation := range ve.Violations {
				logger.Error("validation failed",
					"property", violation.PropertyPath,
					"message", violation.Message,
				)
			}
			os.Exit(1)
		}
		logger.Error("failed to create administrator", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Created administrator %s\n", admin.Email)
	fmt.Printf("API key (store it now, it is only shown here): %s\n", admin.APIKey)
}
