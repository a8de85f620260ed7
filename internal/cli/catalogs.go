package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"live-quiz-engine/internal/catalog"
	"live-quiz-engine/internal/config"
	pgloader "live-quiz-engine/internal/infra/postgres"
)

// NewCatalogsCmd lists the built-in catalogs and can seed them into Postgres.
func NewCatalogsCmd(configPath *string) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "catalogs",
		Short: "List built-in catalogs (optionally seed them into Postgres)",
		RunE: func(cmd *cobra.Command, args []string) error {
			builtin, err := catalog.Builtin()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, quiz := range builtin.Quizzes() {
				fmt.Fprintf(out, "%s\t%d questions\t%s / %s\n", quiz.ID, len(quiz.Questions), quiz.Title.ES, quiz.Title.EN)
			}
			if !seed {
				return nil
			}

			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			ctx := cmd.Context()
			if err := runMigrationsWithConfig(ctx, cfg); err != nil {
				return err
			}
			pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := seedCatalogs(ctx, pgloader.NewCatalogLoader(pool), builtin); err != nil {
				return err
			}
			fmt.Fprintf(out, "seeded %d catalogs\n", len(builtin.Quizzes()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "upsert the built-in catalogs into Postgres")
	return cmd
}

// seedCatalogs upserts every built-in catalog, keeping their order.
func seedCatalogs(ctx context.Context, loader *pgloader.CatalogLoader, builtin *catalog.Static) error {
	for i, quiz := range builtin.Quizzes() {
		if err := loader.SaveCatalog(ctx, i, quiz); err != nil {
			return err
		}
	}
	return nil
}
