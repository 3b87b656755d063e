// Package data provides PostgreSQL access for the formulary API: the read-only drug repository
// used by the handlers and the transactional store used by the seeder.
package data

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/giygas/nlem-api/database"
	"github.com/giygas/nlem-api/entities"
	"github.com/giygas/nlem-api/interfaces"
	"github.com/giygas/nlem-api/metrics"
	"github.com/jackc/pgx/v5"
)

// Compile-time check to ensure DrugRepository implements DrugStore
var _ interfaces.DrugStore = (*DrugRepository)(nil)

// MaxSearchResults caps the number of drugs a search returns
const MaxSearchResults = 100

// ErrDrugNotFound is returned when no drug has the requested id
var ErrDrugNotFound = errors.New("drug not found")

const drugColumns = `id, category_id, generic_name, syn_name, detail, drug_type, dosage_forms,
	ed_level, recommendations, conditions, warnings, notes, footnote, source_code`

var (
	searchDrugsSQL = fmt.Sprintf(`SELECT %s FROM drugs
	WHERE generic_name ILIKE $1 OR syn_name ILIKE $1
	ORDER BY generic_name, id
	LIMIT %d`, drugColumns, MaxSearchResults)

	drugByIDSQL = fmt.Sprintf(`SELECT %s FROM drugs WHERE id = $1`, drugColumns)
)

// DrugRepository reads drugs through the shared pool. Each call holds one connection for
// one query.
type DrugRepository struct {
	pool *database.Pool
}

// NewDrugRepository creates a repository over the shared pool
func NewDrugRepository(pool *database.Pool) *DrugRepository {
	return &DrugRepository{pool: pool}
}

// SearchDrugs returns up to MaxSearchResults drugs whose generic or synonym name contains q,
// ignoring case. q is matched literally; an empty q matches every drug.
func (r *DrugRepository) SearchDrugs(ctx context.Context, q string) (drugs []entities.Drug, err error) {
	start := time.Now()
	defer func() { metrics.ObserveQuery("search_drugs", start, err) }()

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, searchDrugsSQL, containsPattern(q))
	if err != nil {
		return nil, fmt.Errorf("failed to search drugs: %w", err)
	}

	drugs, err = pgx.CollectRows(rows, pgx.RowToStructByName[entities.Drug])
	if err != nil {
		return nil, fmt.Errorf("failed to read search results: %w", err)
	}
	for i := range drugs {
		normalize(&drugs[i])
	}

	return drugs, nil
}

// GetDrugByID returns the drug with the given id, or ErrDrugNotFound
func (r *DrugRepository) GetDrugByID(ctx context.Context, id int32) (drug entities.Drug, err error) {
	start := time.Now()
	defer func() {
		if errors.Is(err, ErrDrugNotFound) {
			metrics.ObserveQuery("get_drug_by_id", start, nil)
			return
		}
		metrics.ObserveQuery("get_drug_by_id", start, err)
	}()

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return entities.Drug{}, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, drugByIDSQL, id)
	if err != nil {
		return entities.Drug{}, fmt.Errorf("failed to get drug %d: %w", id, err)
	}

	drug, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[entities.Drug])
	if errors.Is(err, pgx.ErrNoRows) {
		return entities.Drug{}, fmt.Errorf("%w: id %d", ErrDrugNotFound, id)
	}
	if err != nil {
		return entities.Drug{}, fmt.Errorf("failed to read drug %d: %w", id, err)
	}
	normalize(&drug)

	return drug, nil
}

// normalize keeps dosage_forms an array in JSON output
func normalize(d *entities.Drug) {
	if d.DosageForms == nil {
		d.DosageForms = []string{}
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds the ILIKE pattern for a substring match of q. Backslash is the
// default LIKE escape character in PostgreSQL.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}
