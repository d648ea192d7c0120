package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/sarchlab/gemmcache/monitoring"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the simulator and the dashboard over HTTP.",
		Long: "`serve` starts a web server with a JSON API and a dashboard " +
			"to explore traces, heatmaps, and cache behavior. It runs until " +
			"interrupted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			port, err := intSetting(cmd, "port", EnvPort, 0)
			if err != nil {
				return err
			}

			session := monitoring.NewSession()
			err = session.Load(monitoring.DefaultSimulationParams())
			if err != nil {
				return err
			}

			server := monitoring.NewServer(session)
			if port != 0 {
				server.WithPortNumber(port)
			}

			url := server.StartServer()

			open, _ := cmd.Flags().GetBool("open")
			if open {
				err = browser.OpenURL(url)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Cannot open browser: %v\n", err)
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(),
				os.Interrupt, syscall.SIGTERM)
			defer stop()

			<-ctx.Done()

			return nil
		},
	}

	cmd.Flags().IntP("port", "p", 0,
		"Port to listen on, random if unset. Default from "+EnvPort+".")
	cmd.Flags().Bool("open", false, "Open the dashboard in a browser.")

	return cmd
}
