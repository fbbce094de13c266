package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/findnest-api/internal/dto"
	"github.com/noah-isme/findnest-api/internal/models"
	"github.com/noah-isme/findnest-api/internal/repository"
	"github.com/noah-isme/findnest-api/internal/service"
	"github.com/noah-isme/findnest-api/pkg/config"
	"github.com/noah-isme/findnest-api/pkg/logger"
	"github.com/noah-isme/findnest-api/pkg/upstream"
)

var (
	format  string
	outDir  string
	token   string
	filters dto.FilterParams
)

func main() {
	c := &cobra.Command{
		Use:   "findnest-report",
		Short: "Offline reports over the FindNest backend",
		Args:  cobra.NoArgs,
	}
	c.PersistentFlags().StringVar(&token, "token", os.Getenv("FINDNEST_TOKEN"), "bearer token forwarded to the backend")
	c.PersistentFlags().StringSliceVar(&filters.Action, "action", nil, "event actions to include (Found, Claimed, Deleted)")
	c.PersistentFlags().StringVar(&filters.Name, "name", "", "substring match on item name")
	c.PersistentFlags().StringVar(&filters.Start, "start", "", "first day to include (YYYY-MM-DD)")
	c.PersistentFlags().StringVar(&filters.End, "end", "", "last day to include (YYYY-MM-DD)")

	exportCmd.Flags().StringVarP(&format, "format", "f", string(models.ReportFormatXLSX), "xlsx, csv or pdf")
	exportCmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")

	c.AddCommand(exportCmd)
	c.AddCommand(summaryCmd)

	if err := c.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

var (
	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Write the filtered item report to disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer env.logger.Sync() //nolint:errcheck

			reportFormat := models.ReportFormat(strings.ToLower(format))
			if !reportFormat.Valid() {
				return fmt.Errorf("unsupported format %q", format)
			}

			agg, err := env.aggregate()
			if err != nil {
				return err
			}
			rendered, err := env.exporter.Render(reportFormat, agg.Rows)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			path := filepath.Join(outDir, rendered.Filename)
			if err := os.WriteFile(path, rendered.Data, 0o644); err != nil {
				return err
			}
			fmt.Printf("wrote %d rows to %s\n", rendered.RowCount, path)
			return nil
		},
	}

	summaryCmd = &cobra.Command{
		Use:   "summary",
		Short: "Print item counters for the current filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer env.logger.Sync() //nolint:errcheck

			agg, err := env.aggregate()
			if err != nil {
				return err
			}
			fmt.Printf("total:   %d\nclaimed: %d\npending: %d\nrows:    %d\n",
				agg.Counters.Total, agg.Counters.Claimed, agg.Counters.Pending, len(agg.Rows))
			return nil
		},
	}
)

type environment struct {
	ctx       context.Context
	logger    *zap.Logger
	dashboard *service.DashboardService
	exporter  *service.ExportService
}

func setup(ctx context.Context) (*environment, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	loc, err := service.LoadLocation(cfg.Display.Timezone)
	if err != nil {
		logr.Warn("unknown display timezone, using UTC", zap.Error(err))
	}

	if token != "" {
		ctx = upstream.WithAuthorization(ctx, "Bearer "+strings.TrimPrefix(token, "Bearer "))
	}

	client := upstream.NewClient(cfg.Upstream, logr)
	cache := service.NewCacheService(nil, nil, 0, logr, false)
	snapshots := service.NewSnapshotService(repository.NewItemRepository(client), repository.NewUserRepository(client), cache, 0, logr)

	return &environment{
		ctx:    ctx,
		logger: logr,
		dashboard: service.NewDashboardService(snapshots, cache, logr, service.DashboardServiceConfig{
			RecentLimit: cfg.Dashboard.RecentLimit,
			Location:    loc,
		}),
		exporter: service.NewExportService(nil, nil, nil, logr, service.ExportConfig{Location: loc}),
	}, nil
}

func (e *environment) aggregate() (models.Aggregation, error) {
	filter, err := e.dashboard.ParseFilter(filters)
	if err != nil {
		return models.Aggregation{}, err
	}
	return e.dashboard.Aggregate(e.ctx, filter)
}
