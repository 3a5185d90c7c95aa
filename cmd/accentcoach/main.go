package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/accentcoach/internal/cli"
	"codeberg.org/snonux/accentcoach/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command backed by the processor
	rootCmd := cli.CreateRootCommand(flags, processor.NewProcessor(flags))

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Cancel running commands (and stop the server) on Ctrl-C
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
