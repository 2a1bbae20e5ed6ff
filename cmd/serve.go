package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"Tcp_postgres_redis_library_system/app"
	"Tcp_postgres_redis_library_system/config"
	"Tcp_postgres_redis_library_system/controllers"
	"Tcp_postgres_redis_library_system/routes"
	"Tcp_postgres_redis_library_system/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the TCP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		config.LoadEnv()
		application := app.MustNew()
		defer application.Close()

		application.BootstrapFirstAdmin(context.Background())

		srv := server.New(server.Options{
			ListenAddr:    application.Config.ListenAddr,
			MaxFrameSize:  application.Config.MaxFrameSize,
			SweepInterval: application.Config.SweepInterval,
			SeenThrottle:  application.Config.SeenThrottle,
		}, application.Tokens, application.Repo, application.RDB)

		s := controllers.NewSrv(application.Repo, application.Tokens, application.Config)
		routes.RegisterActions(srv.Dispatcher(), s)

		if err := srv.Start(); err != nil {
			return err
		}

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		log.Println("shutting down")
		srv.Stop()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
