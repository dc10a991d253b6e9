package migrate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/revlimit/modengine-go/log"
	"github.com/revlimit/modengine-go/pkg/config"
	dbmigrate "github.com/revlimit/modengine-go/pkg/db/migrate"
	"github.com/revlimit/modengine-go/pkg/db/postgres"
	"github.com/revlimit/modengine-go/pkg/model"
	"github.com/revlimit/modengine-go/pkg/repository/catalog"
	"github.com/revlimit/modengine-go/pkg/utils"
)

func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "performs database migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startMigration()
		},
	}

	cmd.Flags().StringVarP(&config.MigrationSourceURL,
		"migrationSourceUrl",
		"m",
		"",
		"url to migration files (empty uses the embedded migrations)")
	cmd.Flags().StringVar(&seedFile,
		"seed-catalog",
		"",
		"YAML file with catalog entries to load after the migration")

	return cmd
}

var seedFile string

func startMigration() error {
	// wait for database
	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		log.Warn("Invalid duration value. Setting default 60s", log.ErrorField(err))
		timeout = 60 * time.Second
	}
	postgresAddr := utils.ExtractFromDBURL(config.DB)
	if err = utils.WaitForTCP(postgresAddr, timeout); err != nil {
		log.Fatal("database not ready", log.ErrorField(err))
	}

	if config.MigrationSourceURL == "" {
		log.Info("Using embedded migrations")
		if err = dbmigrate.MigrateDB(config.DB); err != nil {
			log.Fatal("Could not run migration", log.ErrorField(err))
		}
		return seedCatalog()
	}

	log.Info("Using migrations files at", log.String("source", config.MigrationSourceURL))
	dbURL := prepareURLForDB(config.DB)

	m, err := migrate.New(config.MigrationSourceURL,
		strings.Replace(dbURL, "postgresql://", "pgx5://", 1))
	if err != nil {
		log.Fatal("Could not create migration", log.ErrorField(err))
	}
	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("No migration required")
	}
	return seedCatalog()
}

// loads catalog entries from the seed file; existing ids are replaced
func seedCatalog() error {
	if seedFile == "" {
		return nil
	}
	content, err := os.ReadFile(seedFile)
	if err != nil {
		return fmt.Errorf("reading %s: %w", seedFile, err)
	}
	var entries []*model.Modification
	if err := yaml.Unmarshal(content, &entries); err != nil {
		return fmt.Errorf("parsing %s: %w", seedFile, err)
	}
	pool := postgres.InitWithURL(config.DB)
	defer pool.Close()
	ctx := context.Background()
	for _, entry := range entries {
		if _, err := catalog.DeleteByID(ctx, pool, entry.ID); err != nil {
			return err
		}
		if err := catalog.Create(ctx, pool, entry); err != nil {
			return fmt.Errorf("seeding %s: %w", entry.ID, err)
		}
	}
	log.Info("Catalog seeded",
		log.String("file", seedFile), log.Int("entries", len(entries)))
	return nil
}

func prepareURLForDB(url string) string {
	options := "sslmode=disable"
	if strings.Contains(url, options) {
		return url
	}
	if strings.Contains(url, "?") {
		return fmt.Sprintf("%s&%s", url, options)
	} else {
		return fmt.Sprintf("%s?%s", url, options)
	}
}
