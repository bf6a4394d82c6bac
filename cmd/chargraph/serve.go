package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/psidex/chargraph/internal/server"
	"github.com/psidex/chargraph/internal/session"
)

func serveCmd(a *app) *cobra.Command {
	var addr, static string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve interactive sessions over websockets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o := a.cfg.Server
			if addr != "" {
				o.Addr = addr
			}
			if cmd.Flags().Changed("static") {
				o.StaticDir = static
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(o, session.Options{
				Layout: a.cfg.Layout,
				View:   a.cfg.View,
				Style:  a.cfg.Style,
				Theme:  a.cfg.Theme,
			}, a.logger)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "bind", "b", "", "the ip:port to bind the webserver to")
	cmd.Flags().StringVarP(&static, "static", "d", "", "the directory to serve static files from, empty for none")
	return cmd
}
