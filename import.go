package main

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/robalobadob/redactle/apps/go-server/internal/rows"
)

func newImportCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a directory of CSV sources into a SQLite corpus.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.data == "" || cfg.db == "" {
				return errors.New("import needs both --data and --db")
			}
			return runImport(cmd.Context(), cfg.data, cfg.db)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&cfg.data, "data", "", "directory of CSV sources (env: REDACTLE_DATA)")
	fs.StringVar(&cfg.db, "db", "", "SQLite file to write (env: REDACTLE_DB)")
	bindFlags(v, fs)

	return cmd
}

func runImport(ctx context.Context, data, dsn string) error {
	src, err := rows.DirLoader{FS: os.DirFS(data), Name: data}.Load(ctx)
	if err != nil {
		return err
	}
	db, err := rows.OpenDB(dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := rows.Import(ctx, db, src)
	if err != nil {
		return err
	}
	log.Info().Str("data", data).Str("db", dsn).Int("sources", len(src)).Int("rows", n).Msg("import complete")
	return nil
}
