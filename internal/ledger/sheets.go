package ledger

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/soyeahso/macrolog/internal/logging"
)

// headerRow is written lazily the first time the destination sheet is empty.
var headerRow = []any{"Date", "Calories", "Protein (g)", "Carbs (g)", "Fat (g)", "Fiber (g)", "Meals"}

// SheetsLedger writes daily logs directly to a Google Sheet. Rows are
// keyed by exact string match on the date column.
type SheetsLedger struct {
	svc           *sheets.Service
	spreadsheetID string
	sheet         string
	log           *logging.Logger
}

// NewSheetsLedger creates a Sheets-backed ledger authenticated with a
// service-account credentials file.
func NewSheetsLedger(ctx context.Context, spreadsheetID, sheet, credentialsFile string, log *logging.Logger) (*SheetsLedger, error) {
	creds, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading sheets credentials: %w", err)
	}

	jwtCfg, err := google.JWTConfigFromJSON(creds, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parsing sheets credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(jwtCfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	return NewSheetsLedgerFromService(svc, spreadsheetID, sheet, log), nil
}

// NewSheetsLedgerFromService wraps an existing Sheets service (used by
// tests to point at a fake API).
func NewSheetsLedgerFromService(svc *sheets.Service, spreadsheetID, sheet string, log *logging.Logger) *SheetsLedger {
	if sheet == "" {
		sheet = "Sheet1"
	}
	return &SheetsLedger{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheet:         sheet,
		log:           log.Sub("ledger"),
	}
}

// Name returns the backend name.
func (l *SheetsLedger) Name() string { return "sheets" }

// Upsert locates an existing row for the entry's date by scanning the
// date column and overwrites it, or appends a new row. An empty sheet
// gets a header row first.
func (l *SheetsLedger) Upsert(ctx context.Context, entry DailyLog) error {
	resp, err := l.svc.Spreadsheets.Values.
		Get(l.spreadsheetID, l.sheet+"!A:A").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("reading date column: %w", err)
	}

	row := []any{entry.Date, entry.Calories, entry.Protein, entry.Carbs, entry.Fat, entry.Fiber, entry.Meals}

	if len(resp.Values) == 0 {
		if err := l.append(ctx, headerRow); err != nil {
			return fmt.Errorf("writing header row: %w", err)
		}
		if err := l.append(ctx, row); err != nil {
			return fmt.Errorf("appending daily log: %w", err)
		}
		l.log.Info().Str("date", entry.Date).Msg("daily log appended to new sheet")
		return nil
	}

	for i, existing := range resp.Values {
		if len(existing) > 0 && fmt.Sprint(existing[0]) == entry.Date {
			rng := fmt.Sprintf("%s!A%d:G%d", l.sheet, i+1, i+1)
			_, err := l.svc.Spreadsheets.Values.
				Update(l.spreadsheetID, rng, &sheets.ValueRange{Values: [][]any{row}}).
				ValueInputOption("RAW").
				Context(ctx).Do()
			if err != nil {
				return fmt.Errorf("updating row %d: %w", i+1, err)
			}
			l.log.Info().Str("date", entry.Date).Int("row", i+1).Msg("daily log updated")
			return nil
		}
	}

	if err := l.append(ctx, row); err != nil {
		return fmt.Errorf("appending daily log: %w", err)
	}
	l.log.Info().Str("date", entry.Date).Msg("daily log appended")
	return nil
}

func (l *SheetsLedger) append(ctx context.Context, row []any) error {
	_, err := l.svc.Spreadsheets.Values.
		Append(l.spreadsheetID, l.sheet+"!A:G", &sheets.ValueRange{Values: [][]any{row}}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	return err
}
