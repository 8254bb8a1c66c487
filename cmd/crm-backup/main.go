package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mmdatafocus/crm_backend/backup"
	"github.com/mmdatafocus/crm_backend/config"
	"github.com/mmdatafocus/crm_backend/models"
	"github.com/mmdatafocus/crm_backend/utils"
	"github.com/sirupsen/logrus"
)

func main() {
	exportPath := flag.String("export", "", "Write a snapshot to this file (- for stdout)")
	xlsxPath := flag.String("xlsx", "", "Write the snapshot as a workbook to this file")
	importPath := flag.String("import", "", "Import the snapshot in this file (- for stdin)")
	recompute := flag.Bool("recompute-received", false, "With -import: recompute project received totals from receipts")
	clearAll := flag.Bool("clear", false, "Delete every row of every entity table")
	yes := flag.Bool("yes", false, "Required with -clear")
	projectID := flag.String("recompute-project", "", "Recompute received for one project id")
	flag.Parse()

	if *exportPath == "" && *xlsxPath == "" && *importPath == "" && !*clearAll && strings.TrimSpace(*projectID) == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *clearAll && !*yes {
		fmt.Fprintln(os.Stderr, "-clear deletes all data; pass -yes to confirm")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = utils.SetCorrelationIdInContext(ctx, utils.NewId())

	cfg := config.LoadConfig()
	logger := config.GetLogger()
	db, err := config.ConnectDatabaseWithRetry(ctx, cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "database not connected: %v\n", err)
		os.Exit(1)
	}
	defer config.CloseDatabase(db)
	engine := backup.NewEngine(db)

	if *clearAll {
		deleted, err := engine.Clear(ctx)
		exitOnError(logger, "Clear", err)
		logger.WithField("deleted", deleted).Info("all data cleared")
	}

	if *importPath != "" {
		body, err := readInput(*importPath)
		exitOnError(logger, "read import file", err)
		doc, err := backup.DecodeImportDocument(body)
		exitOnError(logger, "decode snapshot", err)
		stats, err := engine.Import(ctx, doc, backup.ImportOptions{RecomputeReceived: *recompute})
		exitOnError(logger, "Import", err)
		out, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(out))
	}

	if id := strings.TrimSpace(*projectID); id != "" {
		err := models.RecomputeProjectReceived(ctx, db, id)
		exitOnError(logger, "RecomputeProjectReceived", err)
		p, err := models.GetModel[models.Project](ctx, db, id)
		exitOnError(logger, "GetModel", err)
		fmt.Printf("project %s received=%s\n", p.ID, p.Received.String())
	}

	if *exportPath != "" || *xlsxPath != "" {
		snap, err := engine.Export(ctx)
		exitOnError(logger, "Export", err)
		if *exportPath != "" {
			data, err := json.MarshalIndent(snap, "", "  ")
			exitOnError(logger, "encode snapshot", err)
			exitOnError(logger, "write snapshot", writeOutput(*exportPath, data))
		}
		if *xlsxPath != "" {
			f, err := os.Create(*xlsxPath)
			exitOnError(logger, "create workbook", err)
			err = backup.WriteWorkbook(f, snap)
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
			exitOnError(logger, "write workbook", err)
		}
	}
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func exitOnError(logger *logrus.Logger, step string, err error) {
	if err == nil {
		return
	}
	config.LogError(logger, "crm-backup", "main", step, nil, err)
	fmt.Fprintf(os.Stderr, "%s: %+v\n", step, err)
	os.Exit(1)
}
