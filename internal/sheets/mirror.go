package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/jmorales/gastosbot/internal/common"
	"github.com/jmorales/gastosbot/internal/service"
)

// headerRow is the fixed first row of the mirror worksheet.
var headerRow = []any{"Fecha", "Tipo", "Categoría", "Descripción", "Monto", "Método de Pago", "Hora"}

// Mirror implements service.Mirror against the Google Sheets API.
//
// The API client and worksheet handle are created lazily on first use and
// dropped after a failed sync, so the next call reconnects from scratch.
type Mirror struct {
	logger *slog.Logger
	config Config

	mu        sync.Mutex
	service   *sheets.Service
	sheet     *sheetRef
	headerSet bool
}

type sheetRef struct {
	title string
	id    int64
}

// NewMirror validates the config and returns a mirror. A config without a
// spreadsheet ID yields a permanently disabled mirror.
func NewMirror(config Config, logger *slog.Logger) (*Mirror, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if config.WorksheetName == "" {
		config.WorksheetName = DefaultConfig().WorksheetName
	}

	return &Mirror{
		config: config,
		logger: logger,
	}, nil
}

// Enabled implements service.Mirror.
func (m *Mirror) Enabled() bool {
	return m.config.Enabled()
}

// Append adds one transaction row at the bottom of the worksheet.
func (m *Mirror) Append(ctx context.Context, row service.MirrorRow) error {
	if !m.Enabled() {
		return common.ErrMirrorDisabled
	}

	err := common.WithRetry(ctx, func() error {
		return m.appendOnce(ctx, row)
	}, m.retryOptions())
	if err != nil {
		m.invalidate()
		return fmt.Errorf("failed to append mirror row: %w", err)
	}

	m.logger.Debug("Mirrored row to spreadsheet",
		"category", row.Category,
		"kind", row.Kind)
	return nil
}

// DeleteLastRow removes the bottom data row. With only the header present
// it does nothing.
func (m *Mirror) DeleteLastRow(ctx context.Context) error {
	if !m.Enabled() {
		return common.ErrMirrorDisabled
	}

	err := common.WithRetry(ctx, func() error {
		return m.deleteLastOnce(ctx)
	}, m.retryOptions())
	if err != nil {
		m.invalidate()
		return fmt.Errorf("failed to delete mirror row: %w", err)
	}

	return nil
}

func (m *Mirror) appendOnce(ctx context.Context, row service.MirrorRow) error {
	svc, sheet, err := m.ensureSheet(ctx)
	if err != nil {
		return err
	}

	valueRange := &sheets.ValueRange{
		Values: [][]any{rowValues(row)},
	}

	_, err = svc.Spreadsheets.Values.Append(m.config.SpreadsheetID, sheetRange(sheet.title, "A:G"), valueRange).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append request failed: %w", err)
	}

	return nil
}

func (m *Mirror) deleteLastOnce(ctx context.Context) error {
	svc, sheet, err := m.ensureSheet(ctx)
	if err != nil {
		return err
	}

	resp, err := svc.Spreadsheets.Values.Get(m.config.SpreadsheetID, sheetRange(sheet.title, "A:A")).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to count rows: %w", err)
	}

	rowCount := len(resp.Values)
	if rowCount <= 1 {
		// Only the header is left
		m.logger.Debug("No mirror rows to delete")
		return nil
	}

	request := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				DeleteDimension: &sheets.DeleteDimensionRequest{
					Range: &sheets.DimensionRange{
						SheetId:    sheet.id,
						Dimension:  "ROWS",
						StartIndex: int64(rowCount - 1),
						EndIndex:   int64(rowCount),
					},
				},
			},
		},
	}

	if _, err := svc.Spreadsheets.BatchUpdate(m.config.SpreadsheetID, request).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete request failed: %w", err)
	}

	return nil
}

// rowValues converts a mirror row to its worksheet representation.
func rowValues(row service.MirrorRow) []any {
	return []any{
		row.When.Format("02/01/2006"),
		row.Kind.Label(),
		row.Category,
		row.Description,
		row.Amount.InexactFloat64(),
		row.PaymentMethod,
		row.When.Format("15:04"),
	}
}

func sheetRange(title, cells string) string {
	return fmt.Sprintf("'%s'!%s", title, cells)
}

func (m *Mirror) retryOptions() service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  m.config.RetryAttempts,
		InitialDelay: m.config.RetryDelay,
	}
}

// invalidate drops the cached client so the next call reconnects.
func (m *Mirror) invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.service = nil
	m.sheet = nil
	m.headerSet = false
}

// ensureSheet lazily builds the API client, resolves the worksheet and
// writes the header row when the sheet is empty.
func (m *Mirror) ensureSheet(ctx context.Context) (*sheets.Service, *sheetRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.service == nil {
		svc, err := createSheetsService(ctx, m.config)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create sheets service: %w", err)
		}
		m.service = svc
	}

	if m.sheet == nil {
		sheet, err := m.findWorksheet(ctx, m.service)
		if err != nil {
			return nil, nil, err
		}
		m.sheet = sheet
	}

	if !m.headerSet {
		if err := m.writeHeaderIfMissing(ctx, m.service, m.sheet); err != nil {
			return nil, nil, err
		}
		m.headerSet = true
	}

	return m.service, m.sheet, nil
}

// findWorksheet resolves the configured worksheet, falling back to the
// spreadsheet's first sheet.
func (m *Mirror) findWorksheet(ctx context.Context, svc *sheets.Service) (*sheetRef, error) {
	spreadsheet, err := svc.Spreadsheets.Get(m.config.SpreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to access spreadsheet %s: %w", m.config.SpreadsheetID, err)
	}
	if len(spreadsheet.Sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet %s has no worksheets", m.config.SpreadsheetID)
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties.Title == m.config.WorksheetName {
			return &sheetRef{title: sheet.Properties.Title, id: sheet.Properties.SheetId}, nil
		}
	}

	first := spreadsheet.Sheets[0].Properties
	m.logger.Warn("Worksheet not found, using first sheet",
		"wanted", m.config.WorksheetName,
		"using", first.Title)
	return &sheetRef{title: first.Title, id: first.SheetId}, nil
}

// writeHeaderIfMissing writes and formats the header row when A1 is empty.
func (m *Mirror) writeHeaderIfMissing(ctx context.Context, svc *sheets.Service, sheet *sheetRef) error {
	resp, err := svc.Spreadsheets.Values.Get(m.config.SpreadsheetID, sheetRange(sheet.title, "A1:G1")).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to read header row: %w", err)
	}
	if len(resp.Values) > 0 {
		return nil
	}

	valueRange := &sheets.ValueRange{Values: [][]any{headerRow}}
	_, err = svc.Spreadsheets.Values.Update(m.config.SpreadsheetID, sheetRange(sheet.title, "A1"), valueRange).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	if err := m.formatHeader(ctx, svc, sheet); err != nil {
		// A plain header still works
		m.logger.Warn("Failed to format header row", "error", err)
	}

	m.logger.Info("Initialized mirror worksheet", "worksheet", sheet.title)
	return nil
}

func (m *Mirror) formatHeader(ctx context.Context, svc *sheets.Service, sheet *sheetRef) error {
	request := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				RepeatCell: &sheets.RepeatCellRequest{
					Range: &sheets.GridRange{
						SheetId:          sheet.id,
						StartRowIndex:    0,
						EndRowIndex:      1,
						StartColumnIndex: 0,
						EndColumnIndex:   int64(len(headerRow)),
					},
					Cell: &sheets.CellData{
						UserEnteredFormat: &sheets.CellFormat{
							BackgroundColor: &sheets.Color{Red: 0.106, Green: 0.165, Blue: 0.29},
							HorizontalAlignment: "CENTER",
							TextFormat: &sheets.TextFormat{
								Bold:            true,
								ForegroundColor: &sheets.Color{Red: 1, Green: 1, Blue: 1},
							},
						},
					},
					Fields: "userEnteredFormat(backgroundColor,textFormat,horizontalAlignment)",
				},
			},
		},
	}

	_, err := svc.Spreadsheets.BatchUpdate(m.config.SpreadsheetID, request).Context(ctx).Do()
	return err
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	switch {
	case config.ServiceAccountPath != "":
		// Use service account authentication
		jsonKey, err := os.ReadFile(config.ServiceAccountPath) // #nosec G304
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)

	case config.RefreshToken != "":
		// Use OAuth2 with a refresh token from config
		oauthConfig := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}

		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}

		tokenSource = oauthConfig.TokenSource(ctx, token)

	default:
		// Use a token saved by the auth command
		token, err := LoadToken(config.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("unable to load token file: %w", err)
		}

		oauthConfig := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}

		tokenSource = oauthConfig.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}
