package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/Beka01247/restaurant-orders/internal/domain"
	"github.com/shopspring/decimal"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const defaultRange = "A:E"

type GoogleSheetsParser struct {
	service *sheets.Service
}

type Config struct {
	CredentialsJSON []byte
}

func New(cfg Config) (*GoogleSheetsParser, error) {
	ctx := context.Background()

	service, err := sheets.NewService(ctx, option.WithCredentialsJSON(cfg.CredentialsJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &GoogleSheetsParser{
		service: service,
	}, nil
}

// ParseMenuItems reads rows of name | price | description | image_url | status from the
// spreadsheet. It returns the parsed items and how many non-blank rows were skipped.
func (p *GoogleSheetsParser) ParseMenuItems(ctx context.Context, spreadsheetID, readRange string) ([]domain.MenuItem, int, error) {
	if readRange == "" {
		readRange = defaultRange
	}

	resp, err := p.service.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read spreadsheet: %w", err)
	}

	if len(resp.Values) == 0 {
		return nil, 0, fmt.Errorf("no data found in spreadsheet")
	}

	items, skipped := ParseRows(resp.Values)
	return items, skipped, nil
}

// ParseRows converts sheet values to menu items. The first row is a header. Blank rows
// are ignored; rows without a name or with a price that is not a positive number are
// counted as skipped.
func ParseRows(values [][]interface{}) ([]domain.MenuItem, int) {
	items := []domain.MenuItem{}
	skipped := 0

	// skip header
	for i := 1; i < len(values); i++ {
		row := values[i]
		if blank(row) {
			continue
		}

		name := cell(row, 0)
		price, err := decimal.NewFromString(strings.TrimSpace(cell(row, 1)))
		if name == "" || err != nil || !price.IsPositive() {
			skipped++
			continue
		}

		status := domain.MenuItemEnabled
		if raw := domain.MenuItemStatus(strings.ToLower(cell(row, 4))); raw.Valid() {
			status = raw
		}

		items = append(items, domain.MenuItem{
			Name:        name,
			Price:       price.Round(2),
			Description: cell(row, 2),
			ImageURL:    cell(row, 3),
			Status:      status,
		})
	}

	return items, skipped
}

func cell(row []interface{}, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%v", row[i]))
}

func blank(row []interface{}) bool {
	for i := range row {
		if cell(row, i) != "" {
			return false
		}
	}
	return true
}
