package data

import (
	"context"
	"fmt"
	"time"

	"github.com/giygas/nlem-api/database"
	"github.com/giygas/nlem-api/entities"
	"github.com/giygas/nlem-api/interfaces"
	"github.com/giygas/nlem-api/metrics"
	"github.com/jackc/pgx/v5"
)

// Compile-time checks to ensure the seed store implements the seeder contracts
var (
	_ interfaces.SeedStore = (*PgSeedStore)(nil)
	_ interfaces.SeedTx    = (*pgSeedTx)(nil)
)

const (
	upsertCategorySQL = `INSERT INTO drug_categories (code, name, level, parent_id)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name
	RETURNING id`

	insertDrugSQL = `INSERT INTO drugs (category_id, generic_name, syn_name, detail, drug_type,
	dosage_forms, ed_level, recommendations, conditions, warnings, notes, footnote, source_code)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
)

// PgSeedStore opens seed transactions on the shared pool
type PgSeedStore struct {
	pool *database.Pool
}

// NewSeedStore creates a seed store over the shared pool
func NewSeedStore(pool *database.Pool) *PgSeedStore {
	return &PgSeedStore{pool: pool}
}

// Begin starts the single transaction a seed run works in
func (s *PgSeedStore) Begin(ctx context.Context) (interfaces.SeedTx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgSeedTx{tx: tx}, nil
}

type pgSeedTx struct {
	tx pgx.Tx
}

func (t *pgSeedTx) DeleteAllDrugs(ctx context.Context) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM drugs`); err != nil {
		return fmt.Errorf("failed to clear drugs: %w", err)
	}
	return nil
}

func (t *pgSeedTx) DeleteAllCategories(ctx context.Context) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM drug_categories`); err != nil {
		return fmt.Errorf("failed to clear drug categories: %w", err)
	}
	return nil
}

func (t *pgSeedTx) UpsertCategory(ctx context.Context, code, name string, level int32, parentID *int32) (id int32, err error) {
	start := time.Now()
	defer func() { metrics.ObserveQuery("upsert_category", start, err) }()

	if err := t.tx.QueryRow(ctx, upsertCategorySQL, code, name, level, parentID).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to upsert category %q: %w", code, err)
	}
	return id, nil
}

func (t *pgSeedTx) InsertDrug(ctx context.Context, drug entities.NewDrug) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveQuery("insert_drug", start, err) }()

	forms := drug.DosageForms
	if forms == nil {
		forms = []string{}
	}

	_, err = t.tx.Exec(ctx, insertDrugSQL,
		drug.CategoryID,
		drug.GenericName,
		drug.SynName,
		drug.Detail,
		drug.DrugType,
		forms,
		drug.EDLevel,
		drug.Recommendations,
		drug.Conditions,
		drug.Warnings,
		drug.Notes,
		drug.Footnote,
		drug.SourceCode,
	)
	if err != nil {
		return fmt.Errorf("failed to insert drug %q: %w", drug.GenericName, err)
	}
	return nil
}

func (t *pgSeedTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *pgSeedTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
