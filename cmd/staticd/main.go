package main

import (
	"os"
	"os/signal"

	"codeberg.org/ursietz/staticd/lib/helper"
	"codeberg.org/ursietz/staticd/lib/server/static"
	"github.com/spf13/cobra"
)

type serveCommand struct {
	host       string
	port       uint16
	directory  string
	requestLog string
	verbose    bool
}

func (c *serveCommand) run(cmd *cobra.Command, args []string) error {
	logger := helper.GetLogger(c.verbose)

	srv := static.Server{
		Host:       c.host,
		Port:       c.port,
		Root:       c.directory,
		RequestLog: c.requestLog,
		Logger:     logger,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Error("server failed", "err", err)
		return err
	}
	return nil
}

func main() {
	var serveCmd serveCommand

	rootCmd := &cobra.Command{
		Use:           "staticd",
		Short:         "staticd serves a directory tree over plain HTTP",
		RunE:          serveCmd.run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := rootCmd.Flags()
	f.StringVarP(&serveCmd.host, "host", "H", "127.0.0.1", "listen host")
	f.Uint16VarP(&serveCmd.port, "port", "p", 8000, "listen TCP port")
	f.StringVarP(&serveCmd.directory, "directory", "d", ".", "directory to serve")
	f.StringVarP(&serveCmd.requestLog, "request-log", "r", "", "path to request log; `-` means stderr")
	f.BoolVarP(&serveCmd.verbose, "verbose", "v", false, "enable verbose logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
