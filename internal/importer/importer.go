// Package importer loads a store's menu from a CSV export. A row with a name
// starts a new item; rows with only variation columns attach variations to
// the item above them.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"tableside/internal/domain"
)

type ItemWriter interface {
	UpsertItem(ctx context.Context, item domain.CatalogItem) (*domain.CatalogItem, error)
	ReplaceVariations(ctx context.Context, itemID string, variations []domain.Variation) error
}

// CSVImporter reads menu CSV exports and inserts/updates catalog items.
type CSVImporter struct {
	reader  *csv.Reader
	items   ItemWriter
	storeID string
}

func NewCSVImporter(r io.Reader, items ItemWriter, storeID string) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:  csvr,
		items:   items,
		storeID: storeID,
	}
}

type csvRow struct {
	Name           string
	Category       string
	Desc           string
	PriceCents     int64
	PromoCents     *int64
	PromoFrom      *time.Time
	PromoUntil     *time.Time
	VariationName  string
	VariationCents int64
}

// Run parses CSV rows and upserts items with their variation blocks.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var (
		current    *csvRow
		variations []domain.Variation
		imported   int
	)

	flush := func() error {
		if current == nil {
			return nil
		}
		if err := i.save(ctx, current, variations); err != nil {
			return err
		}
		imported++
		current = nil
		variations = nil
		return nil
	}

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row, err := parseRow(record, index)
		if err != nil {
			return imported, err
		}
		if row == nil {
			continue
		}

		if row.Name != "" {
			if err := flush(); err != nil {
				return imported, err
			}
			current = row
			continue
		}

		// Continuation rows carry a variation for the item above.
		if current != nil && row.VariationName != "" {
			variations = append(variations, domain.Variation{
				Name:       row.VariationName,
				PriceCents: row.VariationCents,
			})
		}
	}

	if err := flush(); err != nil {
		return imported, err
	}
	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow, variations []domain.Variation) error {
	if row.PriceCents == 0 && len(variations) == 0 {
		return fmt.Errorf("item %q has neither a price nor variations", row.Name)
	}

	origin := domain.OriginMenu
	if row.Category == "" {
		origin = domain.OriginStock
	}

	item := domain.CatalogItem{
		StoreID:         i.storeID,
		CategoryID:      row.Category,
		Name:            row.Name,
		Description:     row.Desc,
		PriceCents:      row.PriceCents,
		PromoPriceCents: row.PromoCents,
		PromoStartsAt:   row.PromoFrom,
		PromoEndsAt:     row.PromoUntil,
		Active:          true,
		Origin:          origin,
	}

	saved, err := i.items.UpsertItem(ctx, item)
	if err != nil {
		return fmt.Errorf("upsert item %q: %w", row.Name, err)
	}
	if len(variations) > 0 {
		if err := i.items.ReplaceVariations(ctx, saved.ID, variations); err != nil {
			return fmt.Errorf("replace variations of %q: %w", row.Name, err)
		}
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (*csvRow, error) {
	name := pick(record, index, "name")
	variationName := pick(record, index, "variation.name")
	if name == "" && variationName == "" {
		return nil, nil
	}

	row := &csvRow{
		Name:          name,
		Category:      pick(record, index, "category"),
		Desc:          pick(record, index, "description"),
		VariationName: variationName,
	}

	if v := pick(record, index, "price"); v != "" {
		cents, err := domain.ParseCents(v)
		if err != nil {
			return nil, fmt.Errorf("item %q: bad price %q", name, v)
		}
		row.PriceCents = cents
	}
	if v := pick(record, index, "promo.price"); v != "" {
		cents, err := domain.ParseCents(v)
		if err != nil {
			return nil, fmt.Errorf("item %q: bad promo price %q", name, v)
		}
		row.PromoCents = &cents
	}
	if v := pick(record, index, "promo.from"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, fmt.Errorf("item %q: bad promo start %q", name, v)
		}
		row.PromoFrom = &ts
	}
	if v := pick(record, index, "promo.until"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, fmt.Errorf("item %q: bad promo end %q", name, v)
		}
		row.PromoUntil = &ts
	}
	if v := pick(record, index, "variation.price"); v != "" {
		cents, err := domain.ParseCents(v)
		if err != nil {
			return nil, fmt.Errorf("variation %q: bad price %q", variationName, v)
		}
		row.VariationCents = cents
	}

	return row, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
