package crm

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/DevanshMistry890/hotel-voice-agent/internal/domain"
)

// SheetsWriter appends CallSummary rows to a Google Sheets spreadsheet.
type SheetsWriter struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetRange    string
}

// NewSheetsWriter builds the writer from a service-account credentials file.
func NewSheetsWriter(ctx context.Context, credentialsFile, spreadsheetID, sheetRange string) (*SheetsWriter, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("crm.NewSheetsWriter: %w", err)
	}

	return &SheetsWriter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetRange:    sheetRange,
	}, nil
}

// Write appends one row: timestamp, guest, intent, summary, action flag,
// session id.
func (w *SheetsWriter) Write(ctx context.Context, s domain.CallSummary) error {
	action := "No"
	if s.ActionRequired {
		action = "Yes"
	}

	row := []interface{}{
		s.EndedAt.Format("2006-01-02 15:04:05"),
		s.GuestName,
		s.Intent,
		s.Summary,
		action,
		s.SessionID.String(),
	}

	_, err := w.svc.Spreadsheets.Values.
		Append(w.spreadsheetID, w.sheetRange, &sheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("crm.SheetsWriter.Write: %w", err)
	}
	return nil
}
