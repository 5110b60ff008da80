// Command seed creates development fixtures: the platform wallet, demo user
// wallets with an opening deposit and an approved demo credit line.
package main

import (
	"context"
	"log"
	"strings"

	"fanzvault/internal/app"
	"fanzvault/internal/config"
	"fanzvault/internal/logger"
	"fanzvault/internal/metrics"
	"fanzvault/internal/models"
	"fanzvault/internal/repositories"
	"fanzvault/internal/services/credit"
	"fanzvault/internal/services/transaction"

	"go.uber.org/zap"
)

const (
	platformUserID  = "platform"
	seedApprover    = "seed"
	openingDeposit  = 100_00
	demoCreditLimit = 500_00
)

func main() {
	config.LoadEnv()
	cfg := config.Load()
	if config.IsProduction() {
		log.Fatal("refusing to seed a production database")
	}

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	db, err := repositories.OpenPostgres(cfg.DB)
	if err != nil {
		zlog.Fatal("database", zap.Error(err))
	}
	if err := repositories.Migrate(db); err != nil {
		zlog.Fatal("migration", zap.Error(err))
	}
	store := repositories.NewPostgresStore(db)
	defer store.Close()

	svcs := app.NewServices(store, nil, cfg.Ledger, metrics.NoopCollector{}, zlog)
	ctx := context.Background()

	if _, err := svcs.Wallets.GetOrCreateWallet(ctx, platformUserID, models.WalletTypeBusiness); err != nil {
		zlog.Fatal("platform wallet", zap.Error(err))
	}

	users := strings.Split(config.GetEnv("SEED_USERS", "demo-fan,demo-creator"), ",")
	for _, userID := range users {
		userID = strings.TrimSpace(userID)
		if userID == "" {
			continue
		}
		if err := seedUser(ctx, svcs, userID); err != nil {
			zlog.Fatal("seed user", zap.String("user_id", userID), zap.Error(err))
		}
		zlog.Info("seeded user", zap.String("user_id", userID))
	}
}

// seedUser is safe to run repeatedly: the opening deposit and the credit
// line are only created for users without history.
func seedUser(ctx context.Context, svcs *app.Services, userID string) error {
	w, err := svcs.Wallets.GetOrCreateWallet(ctx, userID, models.WalletTypeStandard)
	if err != nil {
		return err
	}

	lines, err := svcs.Credit.GetUserCreditLines(ctx, userID)
	if err != nil {
		return err
	}
	if w.Total > 0 || len(lines) > 0 {
		return nil
	}

	if _, err := svcs.Coordinator.RecordTransaction(ctx, transaction.RecordRequest{
		UserID:      userID,
		WalletID:    w.ID,
		Direction:   models.DirectionCredit,
		Category:    models.CategoryDeposit,
		Amount:      openingDeposit,
		Description: "opening balance",
	}); err != nil {
		return err
	}

	cl, err := svcs.Credit.CreateCreditLine(ctx, credit.CreateRequest{
		UserID:          userID,
		CreditLimit:     demoCreditLimit,
		InterestRateBps: 1200,
		TrustScore:      650,
		RiskTier:        models.RiskTierMedium,
	})
	if err != nil {
		return err
	}
	_, err = svcs.Credit.ApproveCreditLine(ctx, cl.ID, seedApprover)
	return err
}
