package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"climate-platform/internal/config"
	"climate-platform/internal/derivation"
	"climate-platform/internal/pipeline"
	"climate-platform/internal/repository"
	"climate-platform/internal/services"
	"climate-platform/pkg/database"
	"climate-platform/pkg/metrics"
)

var (
	requestPath  string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:           "chartseries",
	Short:         "Compute climate chart series against the catalog database",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one chart series request and print the points",
	Example: `  chartseries run --request tmax-by-year.json
  cat request.json | chartseries run --request - --format table`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := readRequest(cmd.InOrStdin(), requestPath)
		if err != nil {
			return err
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logger := cfg.NewLogger("climate-chartseries", "1.0.0")
		logger.SetOutput(cmd.ErrOrStderr())
		collector := metrics.NewCollector("climate_chartseries", nil)

		db, err := database.Open(cfg.DatabaseConnection(), logger, collector)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		catalogRepo := repository.NewCatalogRepository(db, logger, collector)
		provider := derivation.NewProvider(repository.NewSeriesSource(catalogRepo), catalogRepo)
		svc := services.NewChartSeriesService(pipeline.NewDataSetBuilder(provider, nil), services.Defaults{
			CupSizeDays:         cfg.Pipeline.DefaultCupSizeDays,
			AggregationFunction: cfg.Pipeline.DefaultAggregationFunction,
		}, logger, collector)

		resp, err := svc.GetChartSeries(cmd.Context(), req)
		if err != nil {
			return err
		}
		return writeResponse(cmd.OutOrStdout(), resp, outputFormat)
	},
}

func init() {
	runCmd.Flags().StringVar(&requestPath, "request", "-", "Request JSON file, or - for stdin")
	runCmd.Flags().StringVar(&outputFormat, "format", "json", "Output format: json or table")
	rootCmd.AddCommand(runCmd)
}

func readRequest(stdin io.Reader, path string) (pipeline.Request, error) {
	var req pipeline.Request

	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return req, fmt.Errorf("failed to open request: %w", err)
		}
		defer f.Close()
		r = f
	}

	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return req, fmt.Errorf("failed to parse request: %w", err)
	}
	return req, nil
}

func writeResponse(w io.Writer, resp *pipeline.Response, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case "table":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "BIN\tLABEL\tVALUE (%s)\n", resp.UnitOfMeasure)
		for _, p := range resp.Points {
			value := "-"
			if p.Value != nil {
				value = strconv.FormatFloat(*p.Value, 'f', 3, 64)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", p.BinID, p.Label, value)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("invalid format %q (allowed: json, table)", format)
	}
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
