// Package seeder loads the NLEM formulary CSV export into PostgreSQL. A run replaces the whole
// category tree and drug table inside one transaction, so readers see either the previous
// data or the new data, never a mix.
package seeder

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/giygas/nlem-api/entities"
	"github.com/giygas/nlem-api/interfaces"
	"github.com/giygas/nlem-api/logging"
)

// Report summarizes a successful seed run
type Report struct {
	Rows               int           `json:"rows"`
	BlankRows          int           `json:"blank_rows"`
	CategoriesUpserted int           `json:"categories_upserted"`
	DrugsInserted      int           `json:"drugs_inserted"`
	Duration           time.Duration `json:"duration"`
}

// Seeder folds CSV rows into categories and drugs through a SeedStore
type Seeder struct {
	store interfaces.SeedStore
}

// NewSeeder creates a seeder writing to store
func NewSeeder(store interfaces.SeedStore) *Seeder {
	return &Seeder{store: store}
}

// SeedFile replaces the formulary with the contents of the CSV file at path
func (s *Seeder) SeedFile(ctx context.Context, path string) (Report, error) {
	src, err := openSource(path)
	if err != nil {
		return Report{}, err
	}

	logging.Info("Starting database seeding", "file", path)
	report, err := s.Seed(ctx, src)
	if err != nil {
		return report, err
	}

	logging.Info("Database seeding completed",
		"file", path,
		"rows", report.Rows,
		"blank_rows", report.BlankRows,
		"categories_upserted", report.CategoriesUpserted,
		"drugs_inserted", report.DrugsInserted,
		"duration", report.Duration.String(),
	)
	return report, nil
}

// Seed replaces the formulary with the rows read from src. On any error the transaction is
// rolled back and the previous data stays in place.
func (s *Seeder) Seed(ctx context.Context, src io.Reader) (report Report, err error) {
	start := time.Now()

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to begin seed transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		// Use a fresh context so a cancelled run still rolls back
		rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if rbErr := tx.Rollback(rbCtx); rbErr != nil {
			logging.Error("Failed to roll back seed transaction", "error", rbErr)
		}
	}()

	logging.Info("Clearing existing formulary data")
	if err := tx.DeleteAllDrugs(ctx); err != nil {
		return Report{}, err
	}
	if err := tx.DeleteAllCategories(ctx); err != nil {
		return Report{}, err
	}

	if err := s.load(ctx, tx, src, &report); err != nil {
		return report, err
	}

	if err := tx.Commit(ctx); err != nil {
		return report, fmt.Errorf("failed to commit seed transaction: %w", err)
	}
	committed = true

	report.Duration = time.Since(start)
	return report, nil
}

// load streams the CSV rows through the category fold and drug inserts
func (s *Seeder) load(ctx context.Context, tx interfaces.SeedTx, src io.Reader, report *Report) error {
	reader := csv.NewReader(src)
	reader.ReuseRecord = true
	// Exported cells carry inch marks and quoted brand names without CSV escaping
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("seed file is empty: %w", ErrMissingColumn)
	}
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols, err := newColumnIndex(header)
	if err != nil {
		return err
	}

	var h hierarchy
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read CSV row %d: %w", report.Rows+1, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		report.Rows++

		line, _ := reader.FieldPos(0)
		if err := s.processRow(ctx, tx, record{fields: fields, cols: cols}, &h, report); err != nil {
			return fmt.Errorf("row %d (line %d): %w", report.Rows, line, err)
		}
	}
}

// processRow applies one row: category levels 1..4 in order, then the drug when the row
// names one.
func (s *Seeder) processRow(ctx context.Context, tx interfaces.SeedTx, r record, h *hierarchy, report *Report) error {
	touched := false

	for level := 1; level <= entities.MaxCategoryLevel; level++ {
		name, ok := cleanString(r.groupName(level))
		if !ok {
			continue
		}
		touched = true

		code := categoryCode(r, level)
		parent := h.parent(level)
		if level > 1 && parent == nil {
			logging.Warn("Category has no parent in the current context",
				"code", code,
				"level", level,
				"row", report.Rows,
			)
		}

		id, err := tx.UpsertCategory(ctx, code, name, int32(level), parent)
		if err != nil {
			return err
		}
		h.set(level, id)
		report.CategoriesUpserted++
	}

	genericName, ok := cleanString(r.get(colGenericName))
	if !ok {
		if !touched {
			report.BlankRows++
		}
		return nil
	}

	if err := tx.InsertDrug(ctx, toNewDrug(r, genericName, h.deepest())); err != nil {
		return err
	}
	report.DrugsInserted++
	return nil
}
