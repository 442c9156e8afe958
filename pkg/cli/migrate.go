package cli

import (
	"context"
	"fmt"
	"strings"

	gcfirestore "cloud.google.com/go/firestore"
	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-risk/pkg/repository/firestore"
	"github.com/secmon-lab/grc-risk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var projectID string
	var databaseID string
	var prefix string
	var dryRun bool

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrate Firestore indexes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "firestore-project-id",
				Usage:       "Firestore Project ID (required)",
				Required:    true,
				Sources:     cli.EnvVars("GRC_RISK_FIRESTORE_PROJECT_ID"),
				Destination: &projectID,
			},
			&cli.StringFlag{
				Name:        "firestore-database-id",
				Usage:       "Firestore Database ID",
				Sources:     cli.EnvVars("GRC_RISK_FIRESTORE_DATABASE_ID"),
				Destination: &databaseID,
			},
			&cli.StringFlag{
				Name:        "firestore-collection-prefix",
				Usage:       "Prefix prepended to every Firestore collection name",
				Sources:     cli.EnvVars("GRC_RISK_FIRESTORE_COLLECTION_PREFIX"),
				Destination: &prefix,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Preview changes without applying",
				Destination: &dryRun,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			logger.Info("Migrate configuration",
				"projectID", projectID,
				"databaseID", databaseID,
				"prefix", prefix,
				"dryRun", dryRun)

			if databaseID == "" {
				databaseID = gcfirestore.DefaultDatabaseID
			}
			indexConfig := getIndexConfig(prefix)

			client, err := fireconf.New(ctx, projectID, databaseID, indexConfig,
				fireconf.WithLogger(logger),
				fireconf.WithDryRun(dryRun),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create fireconf client")
			}
			defer func() {
				if err := client.Close(); err != nil {
					logger.Error("failed to close fireconf client", "error", err.Error())
				}
			}()

			if dryRun {
				logger.Info("Dry run mode - previewing changes")
				names := make([]string, 0, len(indexConfig.Collections))
				for _, col := range indexConfig.Collections {
					names = append(names, col.Name)
				}
				current, err := client.Import(ctx, names...)
				if err != nil {
					return goerr.Wrap(err, "failed to import current indexes")
				}
				diff, err := client.DiffConfigs(current)
				if err != nil {
					return goerr.Wrap(err, "failed to create migration plan")
				}

				changes := describeMigration(diff)
				if len(changes) == 0 {
					logger.Info("No changes required")
					return nil
				}
				for _, change := range changes {
					logger.Info("Migration step", "change", change)
				}
			} else {
				logger.Info("Applying migrations")
				if err := client.Migrate(ctx); err != nil {
					return goerr.Wrap(err, "failed to apply migrations")
				}
				logger.Info("Migrations applied successfully")
			}

			return nil
		},
	}
}

// describeMigration flattens a diff into one line per index or TTL change
func describeMigration(diff *fireconf.DiffResult) []string {
	if diff == nil {
		return nil
	}

	var changes []string
	for _, col := range diff.Collections {
		for _, idx := range col.IndexesToAdd {
			changes = append(changes, fmt.Sprintf("%s %s index %s", fireconf.ActionAdd, col.Name, indexFields(idx)))
		}
		for _, idx := range col.IndexesToDelete {
			changes = append(changes, fmt.Sprintf("%s %s index %s", fireconf.ActionDelete, col.Name, indexFields(idx)))
		}
		if col.TTLAction != "" {
			changes = append(changes, fmt.Sprintf("%s %s ttl", col.TTLAction, col.Name))
		}
	}
	return changes
}

func indexFields(idx fireconf.Index) string {
	parts := make([]string, 0, len(idx.Fields))
	for _, f := range idx.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", f.Path, f.Order))
	}
	return strings.Join(parts, ",")
}

// byRiskIndex serves ListByRisk: risk_id ASC, id ASC
func byRiskIndex() fireconf.Index {
	return fireconf.Index{
		Fields: []fireconf.IndexField{
			{Path: "risk_id", Order: fireconf.OrderAscending},
			{Path: "id", Order: fireconf.OrderAscending},
		},
	}
}

// getIndexConfig returns the Firestore index configuration. Title lookups
// use a single-field equality filter and need no composite index.
func getIndexConfig(prefix string) *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name:    firestore.CollectionName(prefix, firestore.CollectionDocuments),
				Indexes: []fireconf.Index{byRiskIndex()},
			},
			{
				Name:    firestore.CollectionName(prefix, firestore.CollectionRiskObjects),
				Indexes: []fireconf.Index{byRiskIndex()},
			},
		},
	}
}
