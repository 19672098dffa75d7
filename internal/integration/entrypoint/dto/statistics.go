package dto

import (
	"time"

	"github.com/finance-tracker/wallet-ledger/internal/application/usecase/statistics"
)

// StatsBucketResponse represents one calendar bucket of the statistics.
type StatsBucketResponse struct {
	Key     string    `json:"key"`
	Label   string    `json:"label"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Income  string    `json:"income"`
	Expense string    `json:"expense"`
}

// StatsBarResponse represents one bar of the chart series.
type StatsBarResponse struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// StatisticsResponse represents the statistics of a window.
type StatisticsResponse struct {
	Window       string                `json:"window"`
	Buckets      []StatsBucketResponse `json:"buckets"`
	Stats        []StatsBarResponse    `json:"stats"`
	Transactions []TransactionResponse `json:"transactions"`
}

// ToStatisticsResponse converts the statistics output to a StatisticsResponse DTO.
func ToStatisticsResponse(output *statistics.FetchStatsOutput) StatisticsResponse {
	resp := StatisticsResponse{
		Window:       string(output.Window),
		Buckets:      make([]StatsBucketResponse, 0, len(output.Buckets)),
		Stats:        make([]StatsBarResponse, 0, len(output.Stats)),
		Transactions: ToTransactionListResponse(output.Transactions).Transactions,
	}

	for _, b := range output.Buckets {
		resp.Buckets = append(resp.Buckets, StatsBucketResponse{
			Key:     b.Key,
			Label:   b.Label,
			Start:   b.Start,
			End:     b.End,
			Income:  b.Income.StringFixed(2),
			Expense: b.Expense.StringFixed(2),
		})
	}

	for _, bar := range output.Stats {
		resp.Stats = append(resp.Stats, StatsBarResponse{
			Value: bar.Value.StringFixed(2),
			Label: bar.Label,
			Type:  string(bar.Type),
		})
	}

	return resp
}
