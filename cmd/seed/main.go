// Package main seeds the database with sample subscriptions, users, and
// cards for local development.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"

	"github.com/cardvault/cardvault/internal/repository"
	"github.com/cardvault/cardvault/internal/service"
)

const (
	subscriptionCount = 3
	userCount         = 15
)

var subscriptionSeeds = []struct {
	name   string
	slogan string
	url    string
}{
	{"Bronze", "The essentials, nothing more", "https://example.com/bronze"},
	{"Silver", "Room to grow for small teams", "https://example.com/silver"},
	{"Gold", "Everything, everywhere, all at once", "https://example.com/gold"},
}

var firstnames = []string{
	"Amelie", "Bruno", "Celine", "Damien", "Elise", "Fabien", "Gaelle",
	"Hugo", "Ines", "Julien", "Karine", "Lucas", "Manon", "Nicolas", "Oceane",
}

var lastnames = []string{
	"Martin", "Bernard", "Dubois", "Thomas", "Robert", "Richard", "Petit",
	"Durand", "Leroy", "Moreau", "Simon", "Laurent", "Lefebvre", "Michel", "Garcia",
}

var countries = []string{"France", "Belgium", "Switzerland", "Canada", "Spain"}

var cardTypes = []string{"Visa", "MasterCard", "American Express", "Discover Card"}

var currencies = []string{"EUR", "USD", "GBP", "CHF", "CAD"}

func main() {
	flag.Parse()

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
	subscriptions := service.NewSubscriptionService(repo, nil)
	cards := service.NewCardService(repo, nil)

	subIDs := make([]string, 0, subscriptionCount)
	for _, seed := range subscriptionSeeds {
		sub, err := subscriptions.Create(ctx, service.CreateSubscriptionInput{
			Name:   seed.name,
			Slogan: seed.slogan,
			URL:    seed.url,
		})
		if err != nil {
			logger.Error("failed to create subscription", "name", seed.name, "error", err)
			os.Exit(1)
		}
		subIDs = append(subIDs, sub.ID)
	}
	logger.Info("created subscriptions", "count", len(subIDs))

	created := 0
	for i := 0; i < userCount; i++ {
		firstname := firstnames[i%len(firstnames)]
		lastname := lastnames[rand.Intn(len(lastnames))]
		email := fmt.Sprintf("%s.%s.%d@example.com", strings.ToLower(firstname), strings.ToLower(lastname), i)

		user, err := users.Register(ctx, service.RegisterInput{
			Firstname:      firstname,
			Lastname:       lastname,
			Email:          email,
			Address:        fmt.Sprintf("%d rue de la Paix", rand.Intn(200)+1),
			Country:        countries[rand.Intn(len(countries))],
			SubscriptionID: subIDs[rand.Intn(len(subIDs))],
		})
		if err != nil {
			logger.Error("failed to create user", "email", email, "error", err)
			os.Exit(1)
		}

		// 1 to 2 cards per user
		cardCount := rand.Intn(2) + 1
		for j := 0; j < cardCount; j++ {
			_, err := cards.Create(ctx, service.CreateCardInput{
				Name:             fmt.Sprintf("%s's card %d", firstname, j+1),
				CreditCardType:   cardTypes[rand.Intn(len(cardTypes))],
				CreditCardNumber: randomCardNumber(),
				CurrencyCode:     currencies[rand.Intn(len(currencies))],
				Value:            int64(rand.Intn(100001)),
				OwnerID:          user.ID,
			})
			if err != nil {
				logger.Error("failed to create card", "user", email, "error", err)
				os.Exit(1)
			}
		}

		created++
	}

	logger.Info("seed complete", "users", created)
}

// randomCardNumber builds a 16-digit number. No Luhn check digit; the
// store only cares about uniqueness.
func randomCardNumber() string {
	digits := make([]byte, 16)
	for i := range digits {
		digits[i] = byte('0' + rand.Intn(10))
	}
	return string(digits)
}
