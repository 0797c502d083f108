package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func Start() {
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{Use: "storefront"}
	rootCmd.AddCommand(&cobra.Command{
		Use:   "server",
		Short: "Run the storefront server",
		Run: func(cmd *cobra.Command, args []string) {
			runServer(cmd.Context())
		},
	})
	if err := rootCmd.ExecuteContext(c); err != nil {
		logger := zerolog.New(os.Stderr)
		logger.Fatal().Err(err).Msgf("error when executing command=%s", err.Error())
	}
}
