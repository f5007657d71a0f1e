// Package finance implements the personal ledger: income and expense
// transactions plus the yearly month-bucket statistics view.
package finance

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	financedom "github.com/intizom/intizom/internal/app/domain/finance"
	"github.com/intizom/intizom/internal/app/storage"
	"github.com/intizom/intizom/internal/errors"
	"github.com/intizom/intizom/pkg/logger"
)

// Service manages ledger transactions.
type Service struct {
	store storage.FinanceStore
	log   *logger.Logger
}

// New constructs a finance service backed by the given store.
func New(store storage.FinanceStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("finance")
	}
	return &Service{store: store, log: log}
}

// CreateInput carries the caller-settable transaction fields.
type CreateInput struct {
	Type       string
	Amount     int64
	Category   string
	Note       string
	OccurredAt time.Time
}

// Create records a transaction. Amounts are positive minor currency units;
// the type carries the sign.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (financedom.Transaction, error) {
	txType, ok := financedom.ParseType(in.Type)
	if !ok {
		return financedom.Transaction{}, errors.Validation("type must be income or expense")
	}
	if in.Amount <= 0 {
		return financedom.Transaction{}, errors.Validation("amount must be positive")
	}
	if in.OccurredAt.IsZero() {
		in.OccurredAt = time.Now().UTC()
	}

	created, err := s.store.CreateTransaction(ctx, financedom.Transaction{
		UserID:     userID,
		Type:       txType,
		Amount:     in.Amount,
		Category:   strings.TrimSpace(in.Category),
		Note:       strings.TrimSpace(in.Note),
		OccurredAt: in.OccurredAt,
	})
	if err != nil {
		return financedom.Transaction{}, errors.Internal("create transaction", err)
	}
	return created, nil
}

// List returns the user's transactions, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]financedom.Transaction, error) {
	items, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return nil, errors.Internal("list transactions", err)
	}
	return items, nil
}

// Delete removes a transaction.
func (s *Service) Delete(ctx context.Context, userID, txID string) error {
	tx, err := s.store.GetTransaction(ctx, txID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return errors.NotFound("transaction not found")
		}
		return errors.Internal("load transaction", err)
	}
	if tx.UserID != userID {
		return errors.Forbidden("transaction belongs to another user")
	}
	if err := s.store.DeleteTransaction(ctx, txID); err != nil {
		return errors.Internal("delete transaction", err)
	}
	return nil
}

// Stats aggregates one calendar year into twelve month buckets of income,
// expense and balance.
func (s *Service) Stats(ctx context.Context, userID string, year int) (financedom.YearStats, error) {
	if year < 1970 || year > 9999 {
		return financedom.YearStats{}, errors.Validation("year out of range")
	}

	from := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	items, err := s.store.ListTransactionsInRange(ctx, userID, from, to)
	if err != nil {
		return financedom.YearStats{}, errors.Internal("list transactions", err)
	}

	stats := financedom.YearStats{Year: year, Months: make([]financedom.MonthStat, 12)}
	for i := range stats.Months {
		stats.Months[i].Month = i + 1
	}
	for _, tx := range items {
		bucket := &stats.Months[int(tx.OccurredAt.UTC().Month())-1]
		switch tx.Type {
		case financedom.TypeIncome:
			bucket.Income += tx.Amount
		case financedom.TypeExpense:
			bucket.Expense += tx.Amount
		}
	}
	for i := range stats.Months {
		stats.Months[i].Balance = stats.Months[i].Income - stats.Months[i].Expense
		stats.Income += stats.Months[i].Income
		stats.Expense += stats.Months[i].Expense
	}
	stats.Balance = stats.Income - stats.Expense
	return stats, nil
}
