package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/giygas/nlem-api/data"
	"github.com/giygas/nlem-api/entities"
	"github.com/giygas/nlem-api/validation"
)

// MockDrugStore implements interfaces.DrugStore for testing
type MockDrugStore struct {
	drugs       []entities.Drug
	err         error
	searchCalls []string
	lookupCalls []int32
}

// MockDrugStoreBuilder builds MockDrugStore values for tests
type MockDrugStoreBuilder struct {
	store *MockDrugStore
}

func NewMockDrugStoreBuilder() *MockDrugStoreBuilder {
	return &MockDrugStoreBuilder{store: &MockDrugStore{}}
}

func (b *MockDrugStoreBuilder) WithDrugs(drugs ...entities.Drug) *MockDrugStoreBuilder {
	b.store.drugs = append(b.store.drugs, drugs...)
	return b
}

func (b *MockDrugStoreBuilder) WithError(err error) *MockDrugStoreBuilder {
	b.store.err = err
	return b
}

func (b *MockDrugStoreBuilder) Build() *MockDrugStore {
	return b.store
}

func (m *MockDrugStore) SearchDrugs(ctx context.Context, q string) ([]entities.Drug, error) {
	m.searchCalls = append(m.searchCalls, q)
	if m.err != nil {
		return nil, m.err
	}
	var out []entities.Drug
	needle := strings.ToLower(q)
	for _, d := range m.drugs {
		syn := ""
		if d.SynName != nil {
			syn = *d.SynName
		}
		if strings.Contains(strings.ToLower(d.GenericName), needle) || strings.Contains(strings.ToLower(syn), needle) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *MockDrugStore) GetDrugByID(ctx context.Context, id int32) (entities.Drug, error) {
	m.lookupCalls = append(m.lookupCalls, id)
	if m.err != nil {
		return entities.Drug{}, m.err
	}
	for _, d := range m.drugs {
		if d.ID == id {
			return d, nil
		}
	}
	return entities.Drug{}, fmt.Errorf("%w: id %d", data.ErrDrugNotFound, id)
}

// MockHealthChecker implements interfaces.HealthChecker for testing
type MockHealthChecker struct {
	status     string
	details    map[string]any
	httpStatus int
	readyCalls int
}

func (m *MockHealthChecker) Liveness() map[string]string {
	return map[string]string{"status": "OK"}
}

func (m *MockHealthChecker) Readiness(ctx context.Context) (string, map[string]any, int) {
	m.readyCalls++
	return m.status, m.details, m.httpStatus
}

func strPtr(s string) *string { return &s }
func int32Ptr(i int32) *int32 { return &i }

func newTestHandler(store *MockDrugStore, health *MockHealthChecker) *HTTPHandlerImpl {
	if health == nil {
		health = &MockHealthChecker{status: "healthy", httpStatus: http.StatusOK}
	}
	return NewHTTPHandler(store, validation.NewDataValidator(), health)
}

func sampleDrugs() []entities.Drug {
	return []entities.Drug{
		{ID: 1, CategoryID: int32Ptr(3), GenericName: "Paracetamol", SynName: strPtr("Acetaminophen"), DosageForms: []string{"tab", "syr"}, EDLevel: strPtr("ก")},
		{ID: 2, CategoryID: int32Ptr(3), GenericName: "Ibuprofen", DosageForms: []string{"tab"}},
		{ID: 3, GenericName: "Amoxicillin", DosageForms: []string{}},
	}
}
