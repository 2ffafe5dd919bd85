package wallet

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/crownplay/internal/models"
	"github.com/nkiryanov/crownplay/internal/repository"
)

// Ledger entry to post together with the balance change
type Entry struct {
	Type     string
	Currency string
	Amount   decimal.Decimal
	Metadata map[string]any
}

// Apply entries to the wallet and append them to the ledger.
// Zero entries are skipped. Must be called with storage bound to transaction,
// otherwise balance and ledger may diverge
func Post(ctx context.Context, storage repository.Storage, userID uuid.UUID, entries ...Entry) (models.Wallet, error) {
	var delta models.BalanceDelta

	posted := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Amount.IsZero() {
			continue
		}

		switch e.Currency {
		case models.CurrencyGold:
			delta.Gold = delta.Gold.Add(e.Amount)
		case models.CurrencySweep:
			delta.Sweep = delta.Sweep.Add(e.Amount)
		default:
			return models.Wallet{}, fmt.Errorf("unknown currency %q", e.Currency)
		}
		posted = append(posted, e)
	}

	wallet, err := storage.Wallet().AdjustBalance(ctx, userID, delta)
	if err != nil {
		return wallet, err
	}

	for _, e := range posted {
		_, err := storage.Transaction().CreateTransaction(ctx, models.Transaction{
			UserID:   userID,
			Type:     e.Type,
			Amount:   e.Amount,
			Currency: e.Currency,
			Metadata: e.Metadata,
		})
		if err != nil {
			return wallet, err
		}
	}

	return wallet, nil
}

// Wallet whose balance differs from the ledger replay
type Mismatch struct {
	UserID      uuid.UUID
	Wallet      models.BalanceDelta
	Ledger      models.BalanceDelta
	Discrepancy models.BalanceDelta
}

type WalletService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *WalletService {
	return &WalletService{storage: storage}
}

func (s *WalletService) GetWallet(ctx context.Context, userID uuid.UUID) (models.Wallet, error) {
	return s.storage.Wallet().GetWallet(ctx, userID, false)
}

// Ledger of the user, newest first
func (s *WalletService) ListTransactions(ctx context.Context, userID uuid.UUID, page repository.Page) ([]models.Transaction, int64, error) {
	return s.storage.Transaction().ListTransactions(ctx, repository.TransactionFilter{UserID: &userID}, page)
}

// Ledger of every user, newest first
func (s *WalletService) ListAllTransactions(ctx context.Context, page repository.Page) ([]models.Transaction, int64, error) {
	return s.storage.Transaction().ListTransactions(ctx, repository.TransactionFilter{}, page)
}

// Compare every wallet with the sum of its ledger entries
func (s *WalletService) Reconcile(ctx context.Context) ([]Mismatch, error) {
	sums, err := s.storage.Transaction().SumByUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("can't sum ledger. Err: %w", err)
	}

	var mismatches []Mismatch
	for _, sum := range sums {
		w := sum.Wallet
		if w.Gold.Equal(sum.GoldCoins) && w.Sweep.Equal(sum.SweepCoins) {
			continue
		}

		mismatches = append(mismatches, Mismatch{
			UserID: sum.UserID,
			Wallet: w,
			Ledger: models.BalanceDelta{Gold: sum.GoldCoins, Sweep: sum.SweepCoins},
			Discrepancy: models.BalanceDelta{
				Gold:  w.Gold.Sub(sum.GoldCoins),
				Sweep: w.Sweep.Sub(sum.SweepCoins),
			},
		})
	}

	return mismatches, nil
}
