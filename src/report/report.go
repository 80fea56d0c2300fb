// Package report implements the monthly performance analytics engine.
//
// The engine is a pure function over an already-materialized batch of
// trades: it performs no I/O, reads no wall clock, holds no state between
// invocations, and given identical inputs produces identical reports
// (ordering of the input batch is irrelevant, the sort is internal).
// Concurrent callers need no coordination.
package report

import (
	"fmt"
	"time"

	"github.com/username/tradevault/backend/src/models"
)

// ReportInput is one report request: the trade batch, the balance the
// month starts from, and the IANA zone that defines a "day" throughout
// the report.
type ReportInput struct {
	Trades          []models.TradeRecord
	StartingBalance float64
	TimeZone        string
}

// Compute turns an unordered trade batch into a full monthly report.
//
// The pipeline is strictly linear: per-trade net-effect normalization,
// chronological equity projection, day and instrument bucketing, then the
// scalar summary. The only failure mode is a zone identifier the runtime
// cannot resolve; malformed numeric fields degrade to 0 during
// normalization instead of erroring.
func Compute(input ReportInput) (*models.CoreReport, error) {
	loc, err := time.LoadLocation(input.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("resolving time zone %q: %w", input.TimeZone, err)
	}

	sorted := sortTrades(input.Trades)
	effs := make([]Effective, len(sorted))
	for i, t := range sorted {
		effs[i] = Normalize(t)
	}

	proj := project(sorted, effs, input.StartingBalance)
	daily := bucketByDay(sorted, effs, proj.balances, loc)
	bySymbol := bucketBySymbol(sorted, effs)

	rep := summarize(sorted, effs, proj, daily)
	rep.TimeZone = input.TimeZone
	rep.StartingBalance = input.StartingBalance
	rep.Daily = daily
	rep.BySymbol = bySymbol
	rep.BestDay, rep.WorstDay = bestWorstDay(daily)
	return rep, nil
}
