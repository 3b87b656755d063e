package seeder

import (
	"context"
	"errors"
	"fmt"

	"github.com/giygas/nlem-api/entities"
	"github.com/giygas/nlem-api/interfaces"
)

// memStore is an in-memory SeedStore with the same upsert and transaction semantics as the
// PostgreSQL store: writes go to a working copy that replaces the committed state on Commit.
type memStore struct {
	categories []entities.DrugCategory
	drugs      []entities.Drug
	nextCatID  int32
	nextDrugID int32

	failInsertAt int // fail the nth drug insert (1-based), 0 disables
	inserts      int
	begun        int
	commits      int
	rollbacks    int
}

var _ interfaces.SeedStore = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{}
}

func (s *memStore) Begin(ctx context.Context) (interfaces.SeedTx, error) {
	s.begun++
	return &memTx{
		store:      s,
		categories: append([]entities.DrugCategory(nil), s.categories...),
		drugs:      append([]entities.Drug(nil), s.drugs...),
		nextCatID:  s.nextCatID,
		nextDrugID: s.nextDrugID,
	}, nil
}

func (s *memStore) categoryByCode(code string) (entities.DrugCategory, bool) {
	for _, c := range s.categories {
		if c.Code == code {
			return c, true
		}
	}
	return entities.DrugCategory{}, false
}

func (s *memStore) categoryByID(id int32) (entities.DrugCategory, bool) {
	for _, c := range s.categories {
		if c.ID == id {
			return c, true
		}
	}
	return entities.DrugCategory{}, false
}

func (s *memStore) drugByName(name string) (entities.Drug, bool) {
	for _, d := range s.drugs {
		if d.GenericName == name {
			return d, true
		}
	}
	return entities.Drug{}, false
}

type memTx struct {
	store      *memStore
	categories []entities.DrugCategory
	drugs      []entities.Drug
	nextCatID  int32
	nextDrugID int32
	done       bool
}

var errTxDone = errors.New("transaction already closed")

func (t *memTx) DeleteAllDrugs(ctx context.Context) error {
	if t.done {
		return errTxDone
	}
	t.drugs = nil
	return nil
}

func (t *memTx) DeleteAllCategories(ctx context.Context) error {
	if t.done {
		return errTxDone
	}
	t.categories = nil
	return nil
}

func (t *memTx) UpsertCategory(ctx context.Context, code, name string, level int32, parentID *int32) (int32, error) {
	if t.done {
		return 0, errTxDone
	}
	for i := range t.categories {
		if t.categories[i].Code == code {
			t.categories[i].Name = name
			return t.categories[i].ID, nil
		}
	}
	t.nextCatID++
	var parent *int32
	if parentID != nil {
		p := *parentID
		parent = &p
	}
	t.categories = append(t.categories, entities.DrugCategory{
		ID: t.nextCatID, Code: code, Name: name, Level: level, ParentID: parent,
	})
	return t.nextCatID, nil
}

func (t *memTx) InsertDrug(ctx context.Context, drug entities.NewDrug) error {
	if t.done {
		return errTxDone
	}
	t.store.inserts++
	if t.store.failInsertAt > 0 && t.store.inserts == t.store.failInsertAt {
		return fmt.Errorf("insert %d failed", t.store.inserts)
	}
	t.nextDrugID++
	t.drugs = append(t.drugs, drug.WithID(t.nextDrugID))
	return nil
}

func (t *memTx) Commit(ctx context.Context) error {
	if t.done {
		return errTxDone
	}
	t.done = true
	t.store.commits++
	t.store.categories = t.categories
	t.store.drugs = t.drugs
	t.store.nextCatID = t.nextCatID
	t.store.nextDrugID = t.nextDrugID
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.rollbacks++
	return nil
}
