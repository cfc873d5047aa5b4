package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"edustatus/internal/checker"
	"edustatus/internal/config"
	"edustatus/internal/excel"
	"edustatus/internal/lookup"
	"edustatus/pkg/validator"
)

func main() {
	_ = godotenv.Load()

	inputPath := flag.String("input", "", "path to the input Excel file with students to check")
	outputDir := flag.String("output-dir", "", "directory for the result file (overrides config)")
	outputFile := flag.String("output-file", "", "result filename (overrides config, default is timestamped)")
	appendMode := flag.Bool("append", false, "append to the result file instead of overwriting it")
	sheetName := flag.String("sheet", "", "input sheet name (default is the first sheet)")
	configPath := flag.String("config", ".", "directory containing config.yaml")
	flag.Parse()

	logger := log.New(os.Stderr, "", log.LstdFlags)

	if *inputPath == "" {
		logger.Fatal("missing required -input flag")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	if *outputFile != "" {
		cfg.OutputFilename = *outputFile
	}
	if *sheetName != "" {
		cfg.SheetName = *sheetName
	}

	v := validator.New(logger)
	if ok, msg := v.ExcelFile(*inputPath); !ok {
		logger.Fatalf("input file: %s", msg)
	}

	filename := cfg.OutputFilename
	if filename == "" {
		filename = excel.GenerateDefaultFilename()
	}
	filename = validator.SanitizeFilename(filename)
	if ok, msg := v.OutputPath(cfg.OutputDir, filename); !ok {
		logger.Fatalf("output path: %s", msg)
	}

	reader, err := excel.NewReader(*inputPath, logger)
	if err != nil {
		logger.Fatalf("open input file: %v", err)
	}
	students, err := reader.ReadStudents(cfg.SheetName, cfg.RegNumberColumn, cfg.EmailColumn)
	if err != nil {
		logger.Fatalf("read students: %v", err)
	}
	if len(students) == 0 {
		logger.Fatal("no students found in input file")
	}

	writer, err := excel.NewWriter(filepath.Join(cfg.OutputDir, filename), logger)
	if err != nil {
		logger.Fatalf("prepare output file: %v", err)
	}
	client := lookup.NewClient(cfg.BaseURL, logger, lookup.WithTimeout(cfg.RequestTimeout))

	runner := checker.NewRunner(client, writer, v, logger,
		checker.WithMaxRetries(cfg.MaxRetries),
		checker.WithRequestDelay(cfg.RequestDelay),
		checker.WithAppend(*appendMode),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := runner.Run(ctx, students)
	if err != nil {
		logger.Fatalf("run batch: %v", err)
	}
	logger.Printf("done: %d students, %d processed, %d failed, results in %s",
		summary.Total, summary.Processed, summary.Failed, summary.Path)
}
