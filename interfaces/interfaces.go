// Package interfaces defines the contracts shared by the formulary API packages so that handlers,
// the seeder and the scheduler can be tested against hand-written fakes.
package interfaces

import (
	"context"
	"net/http"

	"github.com/giygas/nlem-api/database"
	"github.com/giygas/nlem-api/entities"
)

// DrugStore is the read side used by the HTTP handlers.
type DrugStore interface {
	// SearchDrugs returns at most 100 drugs whose generic or synonym name contains q,
	// case-insensitively, ordered by generic name. No match is an empty slice.
	SearchDrugs(ctx context.Context, q string) ([]entities.Drug, error)

	// GetDrugByID returns the drug or an error wrapping data.ErrDrugNotFound
	GetDrugByID(ctx context.Context, id int32) (entities.Drug, error)
}

// SeedStore opens the single transaction a seed run works in.
type SeedStore interface {
	Begin(ctx context.Context) (SeedTx, error)
}

// SeedTx is the write side used by the seeder. Nothing is visible to readers until Commit.
type SeedTx interface {
	DeleteAllDrugs(ctx context.Context) error
	DeleteAllCategories(ctx context.Context) error

	// UpsertCategory inserts the category or renames the existing row with the same code,
	// returning its id either way.
	UpsertCategory(ctx context.Context, code, name string, level int32, parentID *int32) (int32, error)

	InsertDrug(ctx context.Context, drug entities.NewDrug) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Pinger is the part of the connection pool the readiness check and scheduler need.
type Pinger interface {
	Ping(ctx context.Context) error
	Stats() database.PoolStats
}

// Scheduler runs the maintenance jobs.
type Scheduler interface {
	Start() error
	Stop()
}

// HTTPHandler defines the contract for HTTP request handlers.
type HTTPHandler interface {
	// Liveness answers {"status":"OK"} without touching the database
	HealthCheck(w http.ResponseWriter, r *http.Request)
	Readiness(w http.ResponseWriter, r *http.Request)
	SearchDrugs(w http.ResponseWriter, r *http.Request)
	FindDrugByID(w http.ResponseWriter, r *http.Request)
}

// HealthChecker reports process and dependency health.
type HealthChecker interface {
	// Liveness never fails and never queries the database
	Liveness() map[string]string

	// Readiness pings the database and returns the status label, details and HTTP status
	Readiness(ctx context.Context) (status string, details map[string]any, httpStatus int)
}

// DataValidator validates user input before it reaches the database.
type DataValidator interface {
	ValidateSearchQuery(q string) error
	ValidateDrugID(input string) (int32, error)
}
