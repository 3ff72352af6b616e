// Package app wires the engine components onto one database connection for
// embedding into a host service or the CLI.
package app

import (
	"context"
	"fmt"

	"github.com/contesthub/contesthub/internal/cascade"
	"github.com/contesthub/contesthub/internal/config"
	"github.com/contesthub/contesthub/internal/db"
	"github.com/contesthub/contesthub/internal/interactions"
	"github.com/contesthub/contesthub/internal/relations"
	"github.com/contesthub/contesthub/internal/repo"
	"github.com/contesthub/contesthub/internal/rules"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App bundles the constructed engine components.
type App struct {
	DB      *gorm.DB
	Stores  *repo.Stores
	Engine  *rules.Engine
	Graph   *relations.Graph
	Binder  *interactions.Binder
	Cascade *cascade.Orchestrator
}

// New opens the database, runs migrations and constructs every component.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	conn, errOpen := db.Open(cfg.Database.DSN)
	if errOpen != nil {
		return nil, errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return nil, errMigrate
	}

	stores := repo.NewStores(conn)
	return &App{
		DB:      conn,
		Stores:  stores,
		Engine:  rules.NewEngine(stores),
		Graph:   relations.NewGraph(stores),
		Binder:  interactions.NewBinder(stores),
		Cascade: cascade.New(conn),
	}, nil
}

// Migrate opens the database and applies the schema, for the CLI.
func Migrate(ctx context.Context, cfg *config.Config) error {
	conn, errOpen := db.Open(cfg.Database.DSN)
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	log.Info("schema migrated")
	return nil
}

// LintRules decodes every stored rule's check list and returns the authoring
// warnings, most usefully after bulk rule imports.
func LintRules(ctx context.Context, cfg *config.Config) ([]rules.LintWarning, error) {
	conn, errOpen := db.Open(cfg.Database.DSN)
	if errOpen != nil {
		return nil, errOpen
	}
	stores := repo.NewStores(conn)

	stored, errList := stores.Rules.ListAll(ctx)
	if errList != nil {
		return nil, errList
	}

	var findings []rules.LintWarning
	for i := range stored {
		rule := stored[i]
		_, warnings, errDecode := rules.RuleChecks(&rule)
		if errDecode != nil {
			findings = append(findings, rules.LintWarning{
				RuleID:  rule.ID,
				Index:   -1,
				Message: fmt.Sprintf("check list does not decode: %v", errDecode),
			})
			continue
		}
		findings = append(findings, warnings...)
	}
	return findings, nil
}
