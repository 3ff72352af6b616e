// Command contesthub manages the engine database: schema migration and rule
// authoring checks.
package main

import (
	"fmt"
	"os"

	"github.com/contesthub/contesthub/internal/app"
	"github.com/contesthub/contesthub/internal/config"
	"github.com/contesthub/contesthub/internal/logging"
	"github.com/spf13/cobra"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:           "contesthub",
		Short:         "Competition platform rule engine tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml")

	loadConfig := func() (*config.Config, error) {
		cfg, errLoad := config.Load(configPath)
		if errLoad != nil {
			return nil, errLoad
		}
		if errSetup := logging.Setup(cfg.Log); errSetup != nil {
			return nil, errSetup
		}
		return cfg, nil
	}

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, errLoad := loadConfig()
			if errLoad != nil {
				return errLoad
			}
			return app.Migrate(cmd.Context(), cfg)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "lint",
		Short: "Report authoring warnings for every stored rule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, errLoad := loadConfig()
			if errLoad != nil {
				return errLoad
			}
			findings, errLint := app.LintRules(cmd.Context(), cfg)
			if errLint != nil {
				return errLint
			}
			if len(findings) == 0 {
				fmt.Println("no warnings")
				return nil
			}
			for _, finding := range findings {
				if finding.Index < 0 {
					fmt.Printf("rule %d: %s\n", finding.RuleID, finding.Message)
					continue
				}
				fmt.Printf("rule %d check %d: %s\n", finding.RuleID, finding.Index, finding.Message)
			}
			return nil
		},
	})

	if errExec := root.Execute(); errExec != nil {
		fmt.Fprintln(os.Stderr, errExec)
		os.Exit(1)
	}
}
