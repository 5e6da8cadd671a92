package notify

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const DefaultSheetRange = "Cotizaciones!A:G"

// SheetsNotifier appends the record as a row through the Google Sheets API.
type SheetsNotifier struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetRange    string
}

// NewSheetsNotifier authenticates with a service account credentials file. Extra
// client options are appended after the credentials.
func NewSheetsNotifier(ctx context.Context, credentialsPath, spreadsheetID, sheetRange string, opts ...option.ClientOption) (*SheetsNotifier, error) {
	if sheetRange == "" {
		sheetRange = DefaultSheetRange
	}
	if credentialsPath != "" {
		opts = append([]option.ClientOption{option.WithCredentialsFile(credentialsPath)}, opts...)
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &SheetsNotifier{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetRange:    sheetRange,
	}, nil
}

var _ Notifier = (*SheetsNotifier)(nil)

func (s *SheetsNotifier) Notify(ctx context.Context, rec Record) error {
	vr := &sheets.ValueRange{
		Values: [][]interface{}{rec.Row()},
	}

	_, err := s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, s.sheetRange, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append sheet row: %w", err)
	}
	return nil
}
