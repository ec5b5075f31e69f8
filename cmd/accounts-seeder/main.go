package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/dutchhouse/auction/pkg/config"
	"github.com/dutchhouse/auction/pkg/database"
	"github.com/dutchhouse/auction/pkg/model"
)

var cfg = config.New()

// Seeded participant accounts start here so they never collide with the
// owner account.
const firstAccountID = 1000

// The deploy step of the marketplace: creates the schema, the zero-balance
// owner account and a batch of funded participant accounts. Safe to re-run,
// everything is idempotent.
func main() {
	t0 := time.Now()
	defer func() { log.Printf("Accounts seeded. Elapsed: %s", time.Since(t0)) }()

	db, closeDB, err := database.New(cfg.PostgresAddr, cfg.PostgresDB, cfg.PostgresUser, cfg.PostgresPassword)
	if err != nil {
		log.Fatalf("### Can't init database: %v", err)
	}
	defer closeDB()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("### Can't create schema: %v", err)
	}

	if err := seed(ctx, db); err != nil {
		log.Fatalf("### Can't seed accounts: %v", err)
	}
}

func seed(ctx context.Context, db *sql.DB) error {
	accounts := &database.AccountDatabase{DB: db}

	// the ledger deploys owned by its deployer, holding nothing
	if err := accounts.Create(ctx, model.AccountID(cfg.Owner), 0); err != nil {
		return fmt.Errorf("can't create owner account: %w", err)
	}

	log.Printf("Owner account #%d ready\n", cfg.Owner)

	for i := 0; i < cfg.AccountsCount; i++ {
		id := model.AccountID(firstAccountID + i)

		if err := accounts.Create(ctx, id, cfg.InitialBalance); err != nil {
			return fmt.Errorf("can't create account %d: %w", id, err)
		}

		if (i+1)%100 == 0 {
			log.Printf("Seeded %d accounts\n", i+1)
		}
	}

	return nil
}
