package main

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"rawdd/internal/config"
	"rawdd/internal/devlist"
	"rawdd/internal/engine"
	"rawdd/internal/event"
	"rawdd/internal/stats"
	"rawdd/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run())
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

func run() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*exitError); ok {
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var showVersion bool

	rootCmd := &cobra.Command{
		Use:   "rawdd",
		Short: "Copy byte ranges between files and raw devices",
		Args: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				return nil
			}
			return cobra.NoArgs(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion {
				fmt.Fprintf(os.Stdout, "rawdd %s\n", version)
				return nil
			}
			return cmd.Help()
		},
	}
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print version and exit")

	rootCmd.AddCommand(newCopyCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(docsCmd)

	return rootCmd
}

//nolint:gocyclo // CLI entry point orchestrates flag parsing and wiring
func newCopyCmd() *cobra.Command {
	var (
		srcSkipStr   string
		destSkipStr  string
		countStr     string
		blockSizeStr string
		createDest   bool
		truncateDest bool
		srcExcl      bool
		destExcl     bool
		destRead     bool
		bwLimitStr   string
		verifyFlag   bool
		verbose      bool
		quiet        bool
		noProgress   bool
		logFile      string
	)

	cmd := &cobra.Command{
		Use:           "copy <source> <destination>",
		Short:         "Perform a block copy between two files or devices",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Configure logging before anything can log, so --quiet and
			// --log govern every record.
			logLevel := slog.LevelWarn
			if verbose {
				logLevel = slog.LevelDebug
			} else if !quiet {
				logLevel = slog.LevelInfo
			}
			textHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel,
			})
			var logHandler slog.Handler = textHandler
			if logFile != "" {
				lf, lfErr := os.Create(logFile)
				if lfErr != nil {
					return fmt.Errorf("open log file: %w", lfErr)
				}
				defer lf.Close()
				jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})
				logHandler = ui.NewMultiHandler(textHandler, jsonHandler)
			}
			slog.SetDefault(slog.New(logHandler))

			// Load optional config file.
			cfg, err := config.Load()
			if err != nil {
				slog.Warn("failed to load config", "error", err)
			}

			// Apply config defaults for flags not explicitly set on the CLI.
			applyConfigDefaults(cmd, cfg.Defaults,
				&blockSizeStr, &bwLimitStr, &verifyFlag, &noProgress)

			srcSkip, err := config.ParseSize(srcSkipStr)
			if err != nil {
				return fmt.Errorf("invalid --src-skip: %w", err)
			}
			destSkip, err := config.ParseSize(destSkipStr)
			if err != nil {
				return fmt.Errorf("invalid --dest-skip: %w", err)
			}
			blockSize, err := config.ParseSize(blockSizeStr)
			if err != nil {
				return fmt.Errorf("invalid --block-size: %w", err)
			}

			// No count means copy until the source is exhausted.
			count := int64(-1)
			if countStr != "" {
				count, err = config.ParseSize(countStr)
				if err != nil {
					return fmt.Errorf("invalid --count: %w", err)
				}
				if count < 0 {
					return fmt.Errorf("invalid --count: must not be negative")
				}
			}

			var bwLimit int64
			if bwLimitStr != "" {
				bwLimit, err = config.ParseSize(bwLimitStr)
				if err != nil {
					return fmt.Errorf("invalid --bwlimit: %w", err)
				}
			}

			collector := stats.NewCollector()
			events := make(chan event.Event, 256)

			presenter := ui.NewPresenter(ui.Config{
				Writer:     os.Stdout,
				ErrWriter:  os.Stderr,
				Stats:      collector,
				IsTTY:      ui.IsTTY(os.Stderr.Fd()),
				Quiet:      quiet,
				NoProgress: noProgress,
			})

			slog.Debug("starting copy",
				"source", args[0],
				"destination", args[1],
				"block_size", blockSize,
				"count", count,
				"bwlimit", bwLimit,
			)

			// Presenter runs in the background, the engine in the foreground.
			var presenterErr error
			var presenterWg sync.WaitGroup
			presenterWg.Add(1)
			go func() {
				defer presenterWg.Done()
				presenterErr = presenter.Run(events)
			}()

			result := engine.Run(engine.Job{
				Source:        args[0],
				Dest:          args[1],
				SrcSkip:       srcSkip,
				DestSkip:      destSkip,
				BlockSize:     int(blockSize),
				Count:         count,
				CreateDest:    createDest,
				TruncateDest:  truncateDest,
				SrcExclusive:  srcExcl,
				DestExclusive: destExcl,
				DestReadable:  destRead,
				BWLimit:       bwLimit,
				Verify:        verifyFlag,
				Events:        events,
				Stats:         collector,
			})
			close(events)
			presenterWg.Wait()
			if presenterErr != nil {
				fmt.Fprintf(os.Stderr, "presenter: %v\n", presenterErr)
			}

			if !quiet {
				if summary := presenter.Summary(); summary != "" {
					fmt.Fprintln(os.Stderr, summary)
				}
			}

			if result.Err != nil {
				slog.Error("copy failed", "error", result.Err)
				return &exitError{code: 1}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&srcSkipStr, "src-skip", "s", "0",
		"bytes to skip in the source before copying")
	cmd.Flags().StringVarP(&destSkipStr, "dest-skip", "S", "0",
		"bytes to skip in the destination before copying")
	cmd.Flags().StringVarP(&countStr, "count", "c", "",
		"bytes to copy (default: until source end)")
	cmd.Flags().StringVarP(&blockSizeStr, "block-size", "b", "4M",
		"size of each block when copying")
	cmd.Flags().BoolVarP(&createDest, "create-dest", "C", false,
		"allow creating the destination if it does not exist")
	cmd.Flags().BoolVarP(&truncateDest, "truncate-dest", "t", false,
		"truncate the destination before copying")
	cmd.Flags().BoolVarP(&srcExcl, "src-excl", "x", false,
		"open the source with exclusive access")
	cmd.Flags().BoolVarP(&destExcl, "dest-excl", "X", false,
		"open the destination with exclusive access")
	cmd.Flags().BoolVarP(&destRead, "dest-read", "R", false,
		"open the destination with read access in addition to write")
	cmd.Flags().StringVar(&bwLimitStr, "bwlimit", "",
		"throttle throughput to this many bytes per second")
	cmd.Flags().BoolVar(&verifyFlag, "verify", false,
		"compare BLAKE3 digests of the copied ranges afterwards")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress all output except errors")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false,
		"disable progress display")
	cmd.Flags().StringVar(&logFile, "log", "",
		"write structured JSON logs to FILE")

	return cmd
}

// applyConfigDefaults overrides flag values from the config file for flags
// the user did not set on the command line.
func applyConfigDefaults(
	cmd *cobra.Command,
	defaults config.DefaultsConfig,
	blockSize, bwLimit *string,
	verify, noProgress *bool,
) {
	if !cmd.Flags().Changed("block-size") && defaults.BlockSize != nil {
		*blockSize = *defaults.BlockSize
	}
	if !cmd.Flags().Changed("bwlimit") && defaults.BWLimit != nil {
		*bwLimit = *defaults.BWLimit
	}
	if !cmd.Flags().Changed("verify") && defaults.Verify != nil {
		*verify = *defaults.Verify
	}
	if !cmd.Flags().Changed("no-progress") && defaults.NoProgress != nil {
		*noProgress = *defaults.NoProgress
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List raw disk partitions and their sizes (Windows only)",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			if !devlist.Supported() {
				return devlist.ErrUnsupported
			}

			paths, err := devlist.ListPartitions()
			if err != nil {
				return fmt.Errorf("enumerate disks: %w", err)
			}

			for _, path := range paths {
				fmt.Println(path)
				size, err := devlist.PartitionSize(path)
				if err != nil {
					// A single unreadable disk does not abort the listing.
					fmt.Fprintf(os.Stderr, "failed to obtain size of %s: %v\n", path, err)
				} else {
					fmt.Printf("    %d\n", size)
				}
				fmt.Println()
			}
			return nil
		},
	}
}
