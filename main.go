package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/rm-hull/png-bitmap/cmd"
	"github.com/rm-hull/png-bitmap/internal"
	"github.com/rm-hull/png-bitmap/internal/bitmap"
	"github.com/rm-hull/png-bitmap/internal/png/stage"
	"github.com/spf13/cobra"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	var formatName string
	var format bitmap.Format
	var filters string
	var port int
	var maxBodyBytes int64
	var debug bool
	var frameDelay float64
	var poolSize int
	var every time.Duration
	var maxFiles int

	rootCmd := &cobra.Command{
		Use:  "png-bitmap",
		Long: `Convert between PNG files and bottom-to-top RGB/RGBA bitmaps`,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			f, err := bitmap.ParseFormat(formatName)
			if err != nil {
				return err
			}
			format = f
			return cmd.ConfigureAdapter()
		},
	}
	rootCmd.PersistentFlags().StringVar(&formatName, "format", "rgba", "Bitmap layout: rgb or rgba")

	inspectCmd := &cobra.Command{
		Use:   "inspect <file.png>...",
		Short: "Load PNG files and report the resulting bitmaps",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			for _, path := range args {
				if err := cmd.Inspect(path, format); err != nil {
					return err
				}
			}
			return nil
		},
	}

	convertCmd := &cobra.Command{
		Use:   "convert <in.png> <out.png> [--format rgb|rgba] [--filters <list>]",
		Short: "Normalize a PNG through a bitmap and write it back out",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return cmd.Convert(args[0], args[1], format, filters)
		},
	}
	convertCmd.Flags().StringVar(&filters, "filters", "", "Comma separated filters, e.g. blur:1.5,greyscale,resize:64x")

	rawCmd := &cobra.Command{
		Use:   "raw <in.png> <out.raw> [--format rgb|rgba]",
		Short: "Dump the bitmap bytes of a PNG, rows bottom-to-top",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return cmd.Raw(args[0], args[1], format)
		},
	}

	animateCmd := &cobra.Command{
		Use:   "animate <out.png> <frame.png>... [--delay <seconds>]",
		Short: "Assemble PNG frames into an animated PNG",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return cmd.Animate(args[1:], args[0], frameDelay)
		},
	}
	animateCmd.Flags().Float64Var(&frameDelay, "delay", 1.0, "Delay between frames in seconds")

	batchCmd := &cobra.Command{
		Use:   "batch <in-dir> <out-dir> [--pool <n>] [--every <duration>] [--max-files <n>] [--filters <list>]",
		Short: "Normalize every PNG in a directory, optionally on a schedule",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			stages, err := stage.ParseStages(filters)
			if err != nil {
				return err
			}
			return cmd.Batch(internal.BatchConfig{
				InDir:    args[0],
				OutDir:   args[1],
				PoolSize: poolSize,
				Format:   format,
				Stages:   stages,
				MaxFiles: maxFiles,
			}, every)
		},
	}
	batchCmd.Flags().IntVar(&poolSize, "pool", 4, "Number of concurrent workers")
	batchCmd.Flags().DurationVar(&every, "every", 0, "Re-run the batch at this interval (0 runs once)")
	batchCmd.Flags().IntVar(&maxFiles, "max-files", 0, "Convert at most this many files per run (0 converts all)")
	batchCmd.Flags().StringVar(&filters, "filters", "", "Comma separated filters, e.g. blur:1.5,greyscale,resize:64x")

	apiServerCmd := &cobra.Command{
		Use:   "api-server [--port <port>] [--max-body <bytes>] [--debug]",
		Short: "Start HTTP API server",
		Run: func(_ *cobra.Command, _ []string) {
			cmd.ApiServer(port, maxBodyBytes, debug)
		},
	}
	apiServerCmd.Flags().IntVar(&port, "port", cmd.EnvInt("PORT", 8080), "Port to run HTTP server on")
	apiServerCmd.Flags().Int64Var(&maxBodyBytes, "max-body", internal.DefaultMaxBodyBytes, "Maximum request body size in bytes")
	apiServerCmd.Flags().BoolVar(&debug, "debug", false, "Enable debugging (pprof) - WARNING: do not enable in production")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			internal.ShowVersion()
		},
	}

	rootCmd.AddCommand(inspectCmd, convertCmd, rawCmd, animateCmd, batchCmd, apiServerCmd, versionCmd)
	return rootCmd
}
