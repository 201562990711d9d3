package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"reqcheck/internal/app"
	"reqcheck/internal/config"
	"reqcheck/internal/exporter"
	"reqcheck/internal/infrastructure"
	"reqcheck/internal/reconcile"
	"reqcheck/internal/services"
	"reqcheck/internal/validation"
	"reqcheck/pkg/contracts/domain"
)

type runOptions struct {
	history string
	current string
	format  string
	outDir  string
	debug   bool
}

// runOutput is what the run command prints on stdout.
type runOutput struct {
	*domain.Report
	ExportPath string `json:"export_path"`
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate a report and write the export file",
		Long: `Joins the historical spreadsheet with the current-semester request list on
the student number, prints the report as JSON and writes the joined table as
xlsx or csv. Exits with code 2 when a required column is missing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.history, "history", "", "historical spreadsheet (.xlsx or .csv)")
	f.StringVar(&opts.current, "current", "", "current-semester spreadsheet (.xlsx or .csv)")
	f.StringVar(&opts.format, "format", "", "export format: xlsx or csv (defaults to report.export_format)")
	f.StringVar(&opts.outDir, "out", ".", "directory for the export file")
	f.BoolVar(&opts.debug, "debug", false, "include the original column labels in the report")
	_ = cmd.MarkFlagRequired("history")
	_ = cmd.MarkFlagRequired("current")

	return cmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}

func runReport(cmd *cobra.Command, opts *runOptions) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, logFile, err := infrastructure.NewLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}

	formatName := opts.format
	if formatName == "" {
		formatName = cfg.Report.ExportFormat
	}
	format, err := exporter.ParseFormat(formatName)
	if err != nil {
		return err
	}

	files := validation.NewFileValidator(cfg.Security.MaxUploadBytes, logger)
	for _, path := range []string{opts.history, opts.current} {
		if err := files.ValidateSpreadsheetFile(path); err != nil {
			return err
		}
	}
	if err := files.ValidateOutputDirectory(opts.outDir); err != nil {
		return err
	}

	service, err := app.NewReportService(cfg.Report, nil, nil, logger)
	if err != nil {
		return err
	}

	history, err := os.Open(opts.history)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer history.Close()

	current, err := os.Open(opts.current)
	if err != nil {
		return fmt.Errorf("failed to open current requests: %w", err)
	}
	defer current.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	// One correlation id for every record of this run
	ctx = infrastructure.EnsureTraceID(ctx, "")

	result, err := service.Generate(ctx, services.GenerateRequest{
		History: history,
		Current: current,
		Debug:   opts.debug || cfg.Report.ShowDebug,
	})
	if err != nil {
		var schemaErr *reconcile.SchemaError
		if errors.As(err, &schemaErr) {
			return &exitError{code: exitSchemaError, err: err}
		}
		return err
	}

	artifact, err := service.Export(ctx, result.Joined, format)
	if err != nil {
		return err
	}
	path, err := exporter.WriteFile(opts.outDir, artifact)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "Report complete",
		slog.String("report_id", result.Report.ID),
		slog.String("export", path))

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(runOutput{Report: result.Report, ExportPath: path})
}
