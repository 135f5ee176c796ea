package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/urban-map/internal/gig"
	"github.com/sells-group/urban-map/internal/render"
	"github.com/sells-group/urban-map/internal/urban"
)

var (
	densityEntType   string
	densityThreshold int
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render every configured urban map",
	Long:  "Renders the overview and the district choropleth of each map in render.presets, or of the built-in maps when no presets file is set.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		presets := urban.DefaultPresets()
		if cfg.Render.Presets != "" {
			loaded, err := urban.LoadPresets(cfg.Render.Presets)
			if err != nil {
				return err
			}
			presets = loaded
		}

		t := censusTable()
		classifiers := make([]urban.Classifier, 0, len(presets))
		for _, p := range presets {
			c, err := p.Classifier(t)
			if err != nil {
				return err
			}
			classifiers = append(classifiers, c)
		}
		ctx, stop := signalContext(cmd.Context())
		defer stop()

		return renderMaps(ctx, classifiers...)
	},
}

var renderDensityCmd = &cobra.Command{
	Use:   "density",
	Short: "Render the population density map",
	RunE: func(cmd *cobra.Command, _ []string) error {
		entType, err := gig.ParseEntityType(densityEntType)
		if err != nil {
			return err
		}
		if densityThreshold < 0 {
			return eris.Errorf("threshold must not be negative, got %d", densityThreshold)
		}
		ctx, stop := signalContext(cmd.Context())
		defer stop()

		return renderMaps(ctx, urban.NewDensity(entType, densityThreshold, censusTable()))
	},
}

var renderLocalAuthorityCmd = &cobra.Command{
	Use:   "local-authority",
	Short: "Render the municipal and urban council map",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext(cmd.Context())
		defer stop()

		return renderMaps(ctx, urban.NewLocalAuthority())
	},
}

// signalContext cancels on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// renderMaps renders each classifier in turn and stops at the first error.
func renderMaps(ctx context.Context, classifiers ...urban.Classifier) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	for _, c := range classifiers {
		r, err := render.New(e.provider, c, rendererOptions(e.table)...)
		if err != nil {
			return err
		}
		if err := r.Render(ctx); err != nil {
			return eris.Wrapf(err, "render %s", c.ImagePath())
		}
	}

	zap.L().Info("render complete", zap.Int("maps", len(classifiers)))
	return nil
}

func init() {
	renderDensityCmd.Flags().StringVar(&densityEntType, "ent-type", urban.DefaultDensityType.String(),
		"entity type to scan ("+strings.Join(densityTypeNames(), ", ")+")")
	renderDensityCmd.Flags().IntVar(&densityThreshold, "threshold", urban.DefaultDensityThreshold,
		"people per km² above which an entity is urban")

	renderCmd.AddCommand(renderDensityCmd, renderLocalAuthorityCmd)
	rootCmd.AddCommand(renderCmd)
}

func densityTypeNames() []string {
	types := []gig.EntityType{gig.TypeGND, gig.TypeDSD, gig.TypeLG, gig.TypeMOH, gig.TypeDistrict}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return names
}
