// Package app wires the intake services to their stores.
package app

import (
	"github.com/brokerdesk/intake/internal/app/services/intake"
	"github.com/brokerdesk/intake/internal/app/services/orders"
	"github.com/brokerdesk/intake/internal/app/services/reports"
	"github.com/brokerdesk/intake/internal/app/storage"
	"github.com/brokerdesk/intake/internal/app/storage/memory"
	"github.com/brokerdesk/intake/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Applications storage.ApplicationStore
	Reference    storage.ReferenceStore
}

// Application ties the domain services together.
type Application struct {
	log *logger.Logger

	Intake  *intake.Service
	Reports *reports.Service
	Orders  *orders.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, log *logger.Logger) *Application {
	if log == nil {
		log = logger.NewDefault("app")
	}

	if stores.Applications == nil || stores.Reference == nil {
		mem := memory.New()
		if stores.Applications == nil {
			stores.Applications = mem
		}
		if stores.Reference == nil {
			stores.Reference = mem
		}
	}

	return &Application{
		log:     log,
		Intake:  intake.New(stores.Applications, log),
		Reports: reports.New(stores.Reference, log),
		Orders:  orders.New(log),
	}
}
