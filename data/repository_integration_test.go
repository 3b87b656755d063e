package data_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/giygas/nlem-api/data"
	"github.com/giygas/nlem-api/database"
	"github.com/giygas/nlem-api/database/dbtest"
	"github.com/giygas/nlem-api/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// loadDrugs replaces the tables' contents with one category and the given drugs
func loadDrugs(t *testing.T, pool *database.Pool, drugs ...entities.NewDrug) int32 {
	t.Helper()
	ctx := context.Background()

	tx, err := data.NewSeedStore(pool).Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.DeleteAllDrugs(ctx))
	require.NoError(t, tx.DeleteAllCategories(ctx))

	catID, err := tx.UpsertCategory(ctx, "1", "Analgesics", 1, nil)
	require.NoError(t, err)

	for _, d := range drugs {
		d.CategoryID = &catID
		require.NoError(t, tx.InsertDrug(ctx, d))
	}
	require.NoError(t, tx.Commit(ctx))
	return catID
}

func TestDrugRepositoryAgainstPostgres(t *testing.T) {
	pg := dbtest.StartPostgres(t)
	pool := pg.MigratedPool(t)
	repo := data.NewDrugRepository(pool)
	ctx := context.Background()

	catID := loadDrugs(t, pool,
		entities.NewDrug{GenericName: "Paracetamol", SynName: strPtr("Acetaminophen"), DosageForms: []string{"tab", "syr"}},
		entities.NewDrug{GenericName: "Ibuprofen"},
		entities.NewDrug{GenericName: "Codeine", SynName: strPtr("methylmorphine")},
		entities.NewDrug{GenericName: "50% Dextrose"},
		entities.NewDrug{GenericName: "Aspirin"},
	)

	t.Run("search is case-insensitive over both names", func(t *testing.T) {
		drugs, err := repo.SearchDrugs(ctx, "ACETAMIN")
		require.NoError(t, err)
		require.Len(t, drugs, 1)
		assert.Equal(t, "Paracetamol", drugs[0].GenericName)
		assert.Equal(t, []string{"tab", "syr"}, drugs[0].DosageForms)
		assert.Equal(t, catID, *drugs[0].CategoryID)
	})

	t.Run("results are ordered by generic name", func(t *testing.T) {
		drugs, err := repo.SearchDrugs(ctx, "")
		require.NoError(t, err)
		require.Len(t, drugs, 5)

		var names []string
		for _, d := range drugs {
			names = append(names, d.GenericName)
		}
		assert.Equal(t, []string{"50% Dextrose", "Aspirin", "Codeine", "Ibuprofen", "Paracetamol"}, names)
	})

	t.Run("metacharacters match literally", func(t *testing.T) {
		drugs, err := repo.SearchDrugs(ctx, "%")
		require.NoError(t, err)
		require.Len(t, drugs, 1)
		assert.Equal(t, "50% Dextrose", drugs[0].GenericName)

		drugs, err = repo.SearchDrugs(ctx, "_")
		require.NoError(t, err)
		assert.Empty(t, drugs)
	})

	t.Run("no match is an empty slice", func(t *testing.T) {
		drugs, err := repo.SearchDrugs(ctx, "zzzz")
		require.NoError(t, err)
		assert.NotNil(t, drugs)
		assert.Empty(t, drugs)
	})

	t.Run("lookup by id returns that drug", func(t *testing.T) {
		drugs, err := repo.SearchDrugs(ctx, "Ibuprofen")
		require.NoError(t, err)
		require.Len(t, drugs, 1)

		drug, err := repo.GetDrugByID(ctx, drugs[0].ID)
		require.NoError(t, err)
		assert.Equal(t, drugs[0], drug)
		assert.Nil(t, drug.SynName)
		assert.NotNil(t, drug.DosageForms)
		assert.Empty(t, drug.DosageForms)
	})

	t.Run("missing id is ErrDrugNotFound", func(t *testing.T) {
		_, err := repo.GetDrugByID(ctx, 999999)
		assert.ErrorIs(t, err, data.ErrDrugNotFound)
	})
}

func TestSearchIsCappedAgainstPostgres(t *testing.T) {
	pg := dbtest.StartPostgres(t)
	pool := pg.MigratedPool(t)

	drugs := make([]entities.NewDrug, 0, 150)
	for i := 0; i < 150; i++ {
		drugs = append(drugs, entities.NewDrug{GenericName: fmt.Sprintf("Drug %03d", i)})
	}
	loadDrugs(t, pool, drugs...)

	results, err := data.NewDrugRepository(pool).SearchDrugs(context.Background(), "drug")
	require.NoError(t, err)
	require.Len(t, results, data.MaxSearchResults)
	assert.Equal(t, "Drug 000", results[0].GenericName)
	assert.Equal(t, "Drug 099", results[99].GenericName)
	for _, d := range results {
		assert.True(t, strings.HasPrefix(d.GenericName, "Drug "))
	}
}

func TestUpsertCategoryKeepsIDAgainstPostgres(t *testing.T) {
	pg := dbtest.StartPostgres(t)
	pool := pg.MigratedPool(t)
	ctx := context.Background()

	tx, err := data.NewSeedStore(pool).Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback(ctx) }()

	first, err := tx.UpsertCategory(ctx, "1", "Old name", 1, nil)
	require.NoError(t, err)
	second, err := tx.UpsertCategory(ctx, "1", "New name", 1, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	child, err := tx.UpsertCategory(ctx, "1.2", "Child", 2, &first)
	require.NoError(t, err)
	assert.NotEqual(t, first, child)
}
