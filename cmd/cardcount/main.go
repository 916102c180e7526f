// Package main reports how many cards a user owns.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/cardvault/cardvault/internal/repository"
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

	user, err := repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			logger.Error("this user does not exist", "email", email)
			os.Exit(1)
		}
		logger.Error("failed to look up user", "error", err)
		os.Exit(1)
	}

	cards, err := repo.ListCardsByOwner(ctx, user.ID)
	if err != nil {
		logger.Error("failed to list cards", "error", err)
		os.Exit(1)
	}

	fmt.Printf("%s has %d card(s)\n", user.Email, len(cards))
}
