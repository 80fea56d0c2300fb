// backend/src/parsers/journal/parser.go
package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/username/tradevault/backend/src/models"
)

// Parser reads trade journal CSV exports. The file carries a header row;
// columns are matched by name so exports with extra or reordered columns
// still import.
type Parser struct{}

// NewParser creates a new instance of the journal Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Required columns. Everything else is optional per row.
const (
	colOpenedAt   = "opened_at"
	colInstrument = "instrument"
	colDirection  = "direction"
	colOutcome    = "outcome"
	colPnlAmount  = "pnl_amount"
	colPnlPercent = "pnl_percent"
	colRiskAmount = "risk_amount"
	colRMultiple  = "r_multiple"
	colCommission = "commission"
	colNetPnl     = "net_pnl"
	colReviewedAt = "reviewed_at"
	colNote       = "note"
)

func normalizeDecimalString(s string) string {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.Trim(cleaned, "\"")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	return cleaned
}

// Parse reads a journal CSV and converts its rows into trades. IDs, user and
// account assignment are left to the caller. Rows with an unparseable
// timestamp or direction are skipped, not fatal.
func (p *Parser) Parse(file io.Reader) ([]models.Trade, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields per record

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("journal parser: failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colOpenedAt, colDirection, colPnlAmount} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("journal parser: missing required column %q", required)
		}
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("journal parser: failed to read all CSV records: %w", err)
	}

	field := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var trades []models.Trade
	for n, record := range records {
		openedAt, err := time.Parse(time.RFC3339, field(record, colOpenedAt))
		if err != nil {
			log.Printf("Journal Parser: Skipping row %d due to invalid opened_at: %v", n+2, err)
			continue
		}

		direction := models.Direction(strings.ToUpper(field(record, colDirection)))
		if direction != models.DirectionBuy && direction != models.DirectionSell {
			log.Printf("Journal Parser: Skipping row %d due to invalid direction %q", n+2, field(record, colDirection))
			continue
		}

		pnlAmount, err := strconv.ParseFloat(normalizeDecimalString(field(record, colPnlAmount)), 64)
		if err != nil {
			log.Printf("Journal Parser: Skipping row %d due to invalid pnl_amount: %v", n+2, err)
			continue
		}

		trade := models.Trade{
			TradeRecord: models.TradeRecord{
				OpenedAt:   openedAt,
				Instrument: field(record, colInstrument),
				Direction:  direction,
				Outcome:    models.Outcome(strings.ToUpper(field(record, colOutcome))),
				PnlAmount:  pnlAmount,
				PnlPercent: parseOptionalValue(field(record, colPnlPercent)),
				RiskAmount: parseOptionalPtr(field(record, colRiskAmount)),
				RMultiple:  parseOptionalPtr(field(record, colRMultiple)),
				Commission: parseOptionalPtr(field(record, colCommission)),
				NetPnl:     parseOptionalPtr(field(record, colNetPnl)),
				ReviewedAt: parseOptionalTime(field(record, colReviewedAt)),
			},
			Note: field(record, colNote),
		}
		trades = append(trades, trade)
	}

	return trades, nil
}

func parseOptionalValue(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(normalizeDecimalString(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// parseOptionalPtr keeps absence distinct from zero: an empty or malformed
// cell stays nil rather than becoming 0.
func parseOptionalPtr(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(normalizeDecimalString(s), 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseOptionalTime keeps a reviewed trade reviewed across export/import.
// An empty or malformed cell stays nil, leaving the trade unreviewed.
func parseOptionalTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
