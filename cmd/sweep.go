package cmd

import (
	"context"
	"log"
	"time"

	"Tcp_postgres_redis_library_system/app"
	"Tcp_postgres_redis_library_system/config"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Mark overdue transactions and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		config.LoadEnv()
		application := app.MustNew()
		defer application.Close()

		n, err := application.Repo.SweepOverdue(context.Background(), time.Now().UTC())
		if err != nil {
			return err
		}
		log.Printf("%d transactions marked overdue", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
