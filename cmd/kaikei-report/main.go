// kaikei-report prints the ledger and the category summary for one
// fiscal year. Records normally come from the remote store; with
// -offline they come from the last saved local snapshot instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/channkenn/pta-kaikei/internal/backend"
	"github.com/channkenn/pta-kaikei/internal/cli"
	"github.com/channkenn/pta-kaikei/internal/core"
	"github.com/channkenn/pta-kaikei/internal/report"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("kaikei-report")

	var (
		year     = flag.String("year", fmt.Sprint(time.Now().Year()), "fiscal year to report on")
		passcode = flag.String("passcode", os.Getenv("KAIKEI_PASSCODE"), "ledger passcode")
		offline  = flag.Bool("offline", false, "read from the local snapshot instead of the remote store")
		save     = flag.Bool("save", false, "save the fetched records as the local snapshot")
		summary  = flag.Bool("summary", false, "print the category summary instead of the record list")
	)
	flag.Parse()

	cfg := cli.LoadAndValidateConfig(logger)
	categories := cli.Categories(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var records []core.Record
	if *offline {
		repo := cli.InitRepository(logger, cfg.SQLiteDBPath)
		defer repo.Close()

		var err error
		records, err = repo.Snapshot(ctx, *year)
		if err != nil {
			logger.Error("Failed to read snapshot", "error", err, "year", *year)
			os.Exit(1)
		}
		if fetchedAt, err := repo.SnapshotFetchedAt(ctx, *year); err == nil {
			logger.Info("Using local snapshot", "year", *year, "fetched_at", fetchedAt.Format(time.RFC3339))
		}
	} else {
		factory, err := backend.NewFactory(backend.Config{
			Type:                backend.Type(cfg.DataBackend),
			Endpoint:            cfg.LedgerAPIURL,
			Timeout:             cfg.LedgerTimeout,
			GoogleSpreadsheetID: cfg.GoogleSpreadsheetID,
			SheetsPasscode:      cfg.SheetsPasscode,
			MemoryPasscode:      cfg.MemoryPasscode,
			MemoryEditable:      cfg.MemoryEditable,
		}, logger.Logger)
		if err != nil {
			logger.Error("Failed to initialize backend factory", "error", err)
			os.Exit(1)
		}

		svc, err := factory.ServiceFor(ctx, *passcode, *year)
		if err != nil {
			logger.Error("Failed to initialize ledger service", "error", err)
			os.Exit(1)
		}
		snap, err := svc.FetchAll(ctx)
		if err != nil {
			logger.Error("Failed to fetch records", "error", err, "year", *year)
			os.Exit(1)
		}
		records = snap.Records

		if *save {
			repo := cli.InitRepository(logger, cfg.SQLiteDBPath)
			defer repo.Close()
			if err := repo.SaveSnapshot(ctx, *year, records); err != nil {
				logger.Error("Failed to save snapshot", "error", err, "year", *year)
				os.Exit(1)
			}
		}
	}

	if *summary {
		if err := report.WriteSummary(os.Stdout, *year, core.Summarize(records, categories)); err != nil {
			logger.Error("Failed to render summary", "error", err)
			os.Exit(1)
		}
		return
	}
	if err := report.WriteDetail(os.Stdout, *year, records, categories); err != nil {
		logger.Error("Failed to render report", "error", err)
		os.Exit(1)
	}
}
