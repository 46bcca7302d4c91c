package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"backing/config"
	"backing/editor"
	"backing/terminal"
)

func main() {
	// Define command line flags
	var (
		interactive = flag.Bool("i", false, "Interactive terminal editor (default when no other mode is given)")
		report      = flag.Bool("report", false, "Print collisions, grouping suggestions and spacing as JSON")
		validate    = flag.Bool("validate", false, "Check the drawing for structural problems and overlaps")
		configFile  = flag.String("config", "", "YAML config file")
		outputFile  = flag.String("o", "", "Output file (report: default stdout; editor: save target)")
		logFile     = flag.String("log", "", "Log file (editor mode logs nowhere by default)")
		help        = flag.Bool("help", false, "Show help")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [drawing.json]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Places and reviews wall backing on a drawing.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s wall.json                 # Edit wall.json in the terminal\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -report wall.json         # Analyse placements\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -validate wall.json       # Exit 1 on any problem\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment (also read from .env):\n")
		fmt.Fprintf(os.Stderr, "  BACKING_SNAP_THRESHOLD, BACKING_GRID_SIZE, BACKING_HISTORY_MAX,\n")
		fmt.Fprintf(os.Stderr, "  BACKING_GROUP_WINDOW_MS, BACKING_GROUPING, BACKING_DEBOUNCE_MS,\n")
		fmt.Fprintf(os.Stderr, "  BACKING_ALIGN_TOP_N, BACKING_ZOOM, BACKING_LOG_LEVEL\n")
	}

	flag.Parse()

	if *help {
		flag.Usage()
		os.Exit(0)
	}

	// A missing .env is fine
	_ = godotenv.Load()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Get filename if provided
	args := flag.Args()
	var filename string
	if len(args) > 0 {
		filename = args[0]
	}

	editing := *interactive || (!*report && !*validate)

	logger, closeLog, err := newLogger(cfg, editing, *logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if editing {
		if err := runInteractive(cfg, logger, filename, *outputFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Non-interactive mode requires a file
	if filename == "" {
		fmt.Fprintf(os.Stderr, "Error: Please provide a drawing JSON file\n\n")
		flag.Usage()
		os.Exit(1)
	}

	drawing, err := editor.LoadDrawing(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading drawing: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("loaded drawing", "file", filename, "placements", len(drawing.Placements))

	if *validate {
		if problems := runValidate(os.Stdout, drawing); problems > 0 {
			os.Exit(1)
		}
		if !*report {
			return
		}
	}

	var out io.Writer = os.Stdout
	if *outputFile != "" {
		f, err := os.Create(*outputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	if err := writeReport(out, buildReport(drawing, cfg.SpacingTable())); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the text logger. The editor owns the terminal, so it only
// logs when given a file.
func newLogger(cfg config.Config, editing bool, logFile string) (*slog.Logger, func(), error) {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case logFile != "":
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, err
		}
		w = f
		closeFn = func() { f.Close() }
	case editing:
		w = io.Discard
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closeFn, nil
}

// openDrawing loads filename, or starts an empty drawing named after it when
// it does not exist yet.
func openDrawing(filename string) (editor.Drawing, error) {
	if filename == "" {
		return editor.Drawing{Name: "untitled"}, nil
	}
	d, err := editor.LoadDrawing(filename)
	if errors.Is(err, fs.ErrNotExist) {
		name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
		return editor.Drawing{Name: name}, nil
	}
	return d, err
}

func runInteractive(cfg config.Config, logger *slog.Logger, filename, outputFile string) error {
	d, err := openDrawing(filename)
	if err != nil {
		return err
	}

	target := filename
	if outputFile != "" {
		target = outputFile
	}
	logger.Info("editing", "drawing", d.Name, "placements", len(d.Placements), "save", target)

	return terminal.Run(d, editor.Options{Config: cfg, Logger: logger}, target)
}
