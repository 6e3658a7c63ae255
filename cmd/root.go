package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/daveio/ssdetect/internal/classify"
	"github.com/daveio/ssdetect/internal/config"
	"github.com/daveio/ssdetect/internal/discover"
	"github.com/daveio/ssdetect/internal/logging"
	"github.com/daveio/ssdetect/internal/pipeline"
	"github.com/daveio/ssdetect/internal/tui"
)

const (
	exitOK        = 0
	exitErrors    = 1
	exitInterrupt = 130

	maxWorkers = 32

	// updateBuffer decouples the drain loop from UI redraw latency.
	updateBuffer = 64
)

var (
	flagMove            string
	flagCopy            string
	flagJSON            bool
	flagScript          bool
	flagWorkers         int
	flagMode            string
	flagOCRChars        int
	flagOCRQuality      float64
	flagNoGPU           bool
	flagExtraHeuristics bool
	flagExifPrefilter   bool
	flagSkipDuplicates  bool
	flagConfig          string
)

var exitCode = exitOK

var rootCmd = &cobra.Command{
	Use:   "ssdetect [flags] [directory]",
	Short: "ssdetect - classify images as screenshots or other",
	Long: "ssdetect scans a directory for images and classifies each one as a\n" +
		"screenshot or other image, using horizontal edge detection, OCR text\n" +
		"heuristics, or both. Screenshots can optionally be moved or copied\n" +
		"to a destination directory.",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitErrors)
	}
	os.Exit(exitCode)
}

func init() {
	rootCmd.Flags().StringVar(&flagMove, "move", "", "move screenshots to this directory")
	rootCmd.Flags().StringVar(&flagCopy, "copy", "", "copy screenshots to this directory")
	rootCmd.Flags().BoolVar(&flagJSON, "json", false, "output in JSON format for scripts")
	rootCmd.Flags().BoolVar(&flagScript, "script", false, "disable the interactive UI for script usage")
	rootCmd.Flags().IntVar(&flagWorkers, "workers", 8, "number of workers (1-32)")
	rootCmd.Flags().StringVar(&flagMode, "mode", "both", "detection mode: edge, ocr, or both")
	rootCmd.Flags().IntVar(&flagOCRChars, "ocr-chars", 10, "minimum characters for OCR detection")
	rootCmd.Flags().Float64Var(&flagOCRQuality, "ocr-quality", 0.6, "minimum average confidence for OCR (0.0-1.0)")
	rootCmd.Flags().BoolVar(&flagNoGPU, "no-gpu", false, "disable GPU acceleration for OCR")
	rootCmd.Flags().BoolVar(&flagExtraHeuristics, "extra-heuristics", true, "enable extra OCR heuristics")
	rootCmd.Flags().BoolVar(&flagExifPrefilter, "exif-prefilter", false, "classify images with camera EXIF as other without running detectors")
	rootCmd.Flags().BoolVar(&flagSkipDuplicates, "skip-duplicates", false, "do not move/copy perceptual duplicates of already-seen screenshots")
	rootCmd.Flags().StringVar(&flagConfig, "config", config.DefaultPath(), "path to a YAML file with flag defaults")

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
}

func run(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	if err := applyConfigDefaults(cmd); err != nil {
		return err
	}
	if err := validateFlags(); err != nil {
		return err
	}

	mode, err := classify.ParseMode(flagMode)
	if err != nil {
		return err
	}

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	logMode := logging.ModeInteractive
	switch {
	case flagJSON:
		logMode = logging.ModeJSON
	case flagScript:
		logMode = logging.ModePlain
	}
	logger := logging.New(logMode)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("scanning directory for images", zap.String("directory", dir))
	files, err := discover.ImageFiles(dir)
	if err != nil {
		logger.Error("failed to scan directory", zap.String("directory", dir), zap.Error(err))
		exitCode = exitErrors
		return nil
	}
	if len(files) == 0 {
		logger.Warn("no image files found", zap.String("directory", dir))
		return nil
	}

	fields := []zap.Field{
		zap.Int("count", len(files)),
		zap.Int("workers", flagWorkers),
		zap.String("detection_mode", mode.String()),
	}
	if mode.UsesOCR() {
		fields = append(fields,
			zap.Int("ocr_chars", flagOCRChars),
			zap.Float64("ocr_quality", flagOCRQuality))
	}
	logger.Info("found images to process", fields...)

	opts := pipeline.Options{
		Mode:             mode,
		Workers:          flagWorkers,
		OCRCharThreshold: flagOCRChars,
		OCRConfThreshold: flagOCRQuality,
		ExtraHeuristics:  flagExtraHeuristics,
		UseGPU:           !flagNoGPU,
		ExifPrefilter:    flagExifPrefilter,
		SkipDuplicates:   flagSkipDuplicates,
		MoveTo:           flagMove,
		CopyTo:           flagCopy,
		Logger:           logger,
	}

	var result pipeline.RunResult
	switch logMode {
	case logging.ModeInteractive:
		result = runInteractive(ctx, files, opts)
	case logging.ModePlain:
		result = runPlain(ctx, files, opts)
	default:
		result = pipeline.Run(ctx, files, opts, nil)
	}

	switch {
	case result.Interrupted:
		exitCode = exitInterrupt
	case result.Errors > 0:
		exitCode = exitErrors
	}
	return nil
}

// runInteractive drives the bubbletea UI while the pipeline runs, then
// prints the final summary table.
func runInteractive(ctx context.Context, files []string, opts pipeline.Options) pipeline.RunResult {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan pipeline.ProgressUpdate, updateBuffer)
	program := tea.NewProgram(tui.NewModel(updates, len(files)))

	uiDone := make(chan struct{})
	go func() {
		defer close(uiDone)
		_, _ = program.Run()
		// In raw mode ctrl+c reaches the model as a keystroke instead of
		// a signal, so a UI exit before the updates channel closes is a
		// user interrupt. Stop dispatching and let the pipeline drain.
		cancel()
	}()

	result := pipeline.Run(ctx, files, opts, updates)
	close(updates)
	<-uiDone

	rows := []tui.SummaryRow{
		{Label: "Total Files", Value: fmt.Sprintf("%d", result.Total)},
		{Label: "Screenshots", Value: fmt.Sprintf("%d", result.Screenshots)},
		{Label: "Other Images", Value: fmt.Sprintf("%d", result.Other)},
		{Label: "Errors", Value: fmt.Sprintf("%d", result.Errors)},
	}
	switch {
	case opts.MoveTo != "":
		rows = append(rows, tui.SummaryRow{Label: "Moved to", Value: opts.MoveTo})
	case opts.CopyTo != "":
		rows = append(rows, tui.SummaryRow{Label: "Copied to", Value: opts.CopyTo})
	}
	fmt.Fprintln(os.Stdout, tui.RenderSummary(rows))

	return result
}

// runPlain logs per-image events to stdout and keeps a progress bar on
// stderr so the two streams stay separable.
func runPlain(ctx context.Context, files []string, opts pipeline.Options) pipeline.RunResult {
	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("classifying images"),
		progressbar.OptionShowCount(),
	)

	updates := make(chan pipeline.ProgressUpdate, updateBuffer)
	barDone := make(chan struct{})
	go func() {
		defer close(barDone)
		for update := range updates {
			_ = bar.Add(update.TotalDelta)
		}
	}()

	result := pipeline.Run(ctx, files, opts, updates)
	close(updates)
	<-barDone
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)

	return result
}

// applyConfigDefaults fills in flags the user did not set from the YAML
// defaults file. Explicit flags always win.
func applyConfigDefaults(cmd *cobra.Command) error {
	defaults, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if defaults.Mode != nil && !flags.Changed("mode") {
		flagMode = *defaults.Mode
	}
	if defaults.Workers != nil && !flags.Changed("workers") {
		flagWorkers = *defaults.Workers
	}
	if defaults.OCRChars != nil && !flags.Changed("ocr-chars") {
		flagOCRChars = *defaults.OCRChars
	}
	if defaults.OCRQuality != nil && !flags.Changed("ocr-quality") {
		flagOCRQuality = *defaults.OCRQuality
	}
	if defaults.ExtraHeuristics != nil && !flags.Changed("extra-heuristics") {
		flagExtraHeuristics = *defaults.ExtraHeuristics
	}
	if defaults.UseGPU != nil && !flags.Changed("no-gpu") {
		flagNoGPU = !*defaults.UseGPU
	}
	if defaults.ExifPrefilter != nil && !flags.Changed("exif-prefilter") {
		flagExifPrefilter = *defaults.ExifPrefilter
	}
	if defaults.SkipDuplicates != nil && !flags.Changed("skip-duplicates") {
		flagSkipDuplicates = *defaults.SkipDuplicates
	}
	return nil
}

func validateFlags() error {
	if flagMove != "" && flagCopy != "" {
		return fmt.Errorf("--move and --copy cannot be used together")
	}
	if flagWorkers < 1 || flagWorkers > maxWorkers {
		return fmt.Errorf("--workers must be between 1 and %d", maxWorkers)
	}
	if flagOCRChars < 1 {
		return fmt.Errorf("--ocr-chars must be at least 1")
	}
	if flagOCRQuality < 0 || flagOCRQuality > 1 {
		return fmt.Errorf("--ocr-quality must be between 0.0 and 1.0")
	}
	return nil
}
