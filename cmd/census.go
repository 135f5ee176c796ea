package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/urban-map/internal/config"
	"github.com/sells-group/urban-map/internal/db"
	"github.com/sells-group/urban-map/internal/gig"
)

var censusTSVPath string

var censusCmd = &cobra.Command{
	Use:   "census",
	Short: "Manage population tables",
}

var censusImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a TSV population table into the census store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext(cmd.Context())
		defer stop()

		t := censusTable()

		f, err := os.Open(censusTSVPath)
		if err != nil {
			return eris.Wrap(err, "open tsv")
		}
		defer f.Close() //nolint:errcheck

		rows, err := gig.ReadCensusTSV(f)
		if err != nil {
			return eris.Wrapf(err, "parse %s", censusTSVPath)
		}

		var imported int64
		switch cfg.Census.Driver {
		case config.CensusSQLite:
			store, err := openSQLiteCensus(ctx)
			if err != nil {
				return err
			}
			defer store.Close() //nolint:errcheck
			imported, err = store.Import(ctx, t, rows)
			if err != nil {
				return err
			}
		case config.CensusPostgres:
			pool, err := db.Connect(ctx, cfg.Provider.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()
			imported, err = gig.ImportPostgresCensus(ctx, pool, t, rows)
			if err != nil {
				return err
			}
		default:
			return eris.Errorf("census import needs census.driver sqlite or postgres, got %q", cfg.Census.Driver)
		}

		zap.L().Info("census import complete",
			zap.String("table", t.String()),
			zap.String("driver", cfg.Census.Driver),
			zap.Int64("rows", imported),
			zap.String("tsv", censusTSVPath),
		)
		return nil
	},
}

func init() {
	censusImportCmd.Flags().StringVar(&censusTSVPath, "tsv", "", "path to TSV file (required)")
	_ = censusImportCmd.MarkFlagRequired("tsv")
	censusCmd.AddCommand(censusImportCmd)
	rootCmd.AddCommand(censusCmd)
}
