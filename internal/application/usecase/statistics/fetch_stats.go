package statistics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/wallet-ledger/internal/application/adapter"
	"github.com/finance-tracker/wallet-ledger/internal/domain/entity"
	domainerror "github.com/finance-tracker/wallet-ledger/internal/domain/error"
)

// FetchStatsInput represents the input for fetching statistics.
type FetchStatsInput struct {
	UserID uuid.UUID
	Window Window
}

// Bar is one bar of the chart series.
type Bar struct {
	Value decimal.Decimal
	Label string
	Type  entity.TransactionType
}

// FetchStatsOutput represents the statistics of a window.
type FetchStatsOutput struct {
	Window       Window
	Buckets      []Bucket
	Stats        []Bar // Alternating income and expense bars, one pair per bucket
	Transactions []*entity.Transaction
}

// FetchStatsUseCase aggregates a user's transactions into calendar buckets.
type FetchStatsUseCase struct {
	transactionRepo adapter.TransactionRepository
	now             func() time.Time
	location        *time.Location
}

// NewFetchStatsUseCase creates a new FetchStatsUseCase instance.
// A nil clock uses time.Now and a nil location uses UTC.
func NewFetchStatsUseCase(
	transactionRepo adapter.TransactionRepository,
	clock func() time.Time,
	location *time.Location,
) *FetchStatsUseCase {
	if clock == nil {
		clock = time.Now
	}
	if location == nil {
		location = time.UTC
	}

	return &FetchStatsUseCase{
		transactionRepo: transactionRepo,
		now:             clock,
		location:        location,
	}
}

// Execute builds the buckets of the window, folds the transactions into them and
// returns the bar series. Buckets without transactions stay at zero.
func (uc *FetchStatsUseCase) Execute(ctx context.Context, input FetchStatsInput) (*FetchStatsOutput, error) {
	window, err := ParseWindow(string(input.Window))
	if err != nil {
		return nil, err
	}

	now := uc.now().In(uc.location)
	filter := adapter.TransactionFilter{UserID: input.UserID}

	firstYear := now.Year()
	if window == WindowYearly {
		earliest, err := uc.transactionRepo.FindEarliestDate(ctx, input.UserID)
		if err != nil {
			return nil, persistenceError(err)
		}
		if earliest != nil {
			firstYear = earliest.In(uc.location).Year()
		}
	}

	buckets := buildBuckets(window, now, firstYear)

	if window != WindowYearly {
		start := buckets[0].Start
		end := buckets[len(buckets)-1].End.Add(-time.Nanosecond)
		filter.StartDate = &start
		filter.EndDate = &end
	}

	transactions, err := uc.transactionRepo.FindByFilter(ctx, filter)
	if err != nil {
		return nil, persistenceError(err)
	}

	index := make(map[string]int, len(buckets))
	for i, b := range buckets {
		index[b.Key] = i
	}

	for _, t := range transactions {
		i, ok := index[bucketKey(t.Date.In(uc.location), window)]
		if !ok {
			continue
		}
		switch t.Type {
		case entity.TransactionTypeIncome:
			buckets[i].Income = buckets[i].Income.Add(t.Amount)
		case entity.TransactionTypeExpense:
			buckets[i].Expense = buckets[i].Expense.Add(t.Amount)
		}
	}

	stats := make([]Bar, 0, len(buckets)*2)
	for _, b := range buckets {
		stats = append(stats,
			Bar{Value: b.Income, Label: b.Label, Type: entity.TransactionTypeIncome},
			Bar{Value: b.Expense, Label: b.Label, Type: entity.TransactionTypeExpense},
		)
	}

	return &FetchStatsOutput{
		Window:       window,
		Buckets:      buckets,
		Stats:        stats,
		Transactions: transactions,
	}, nil
}

func persistenceError(err error) error {
	return domainerror.NewStatisticsError(
		domainerror.ErrCodeStatsPersistence,
		"failed to load transactions",
		err,
	)
}
