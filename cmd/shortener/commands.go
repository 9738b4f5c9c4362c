package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ppinng/url-shotener/internal/app"
	"github.com/ppinng/url-shotener/internal/redirect"
	"github.com/ppinng/url-shotener/internal/router"
	"github.com/ppinng/url-shotener/pkg/http/server"
)

var errLinkNotFound = errors.New("link not found")

func newRootCmd() *cobra.Command {
	var flags flagConfig
	root := &cobra.Command{
		Use:           "shortener",
		Short:         "Deterministic URL shortener",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags.register(root.PersistentFlags())
	root.AddCommand(
		newServeCmd(&flags),
		newShortenCmd(&flags),
		newResolveCmd(&flags),
	)
	return root
}

func newServeCmd(flags *flagConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			theApp, err := app.New(flags.override)
			if err != nil {
				return errors.Wrap(err, "failed to init the app")
			}
			defer theApp.Close()
			srv := &http.Server{
				Addr:    theApp.Config.ServerAddress,
				Handler: router.New(theApp),
			}
			return server.Start(cmd.Context(), srv, server.WithShutdownTimeout(theApp.Config.ServerShutdownTimeout))
		},
	}
}

func newShortenCmd(flags *flagConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "shorten <url>",
		Short: "Shorten a URL and print the short link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			theApp, err := app.New(flags.override)
			if err != nil {
				return errors.Wrap(err, "failed to init the app")
			}
			defer theApp.Close()
			mapping, err := theApp.Shorten(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), theApp.ShortURL(mapping.Token, nil))
			return nil
		},
	}
}

// resolve ведет себя как страница перехода: ждет задержку и печатает оригинальный URL.
// Ctrl-C до истечения задержки отменяет переход
func newResolveCmd(flags *flagConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <token>",
		Short: "Print the original URL behind a token after the redirect delay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			theApp, err := app.New(flags.override)
			if err != nil {
				return errors.Wrap(err, "failed to init the app")
			}
			defer theApp.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			state, err := redirect.Wait(ctx, args[0], theApp.Config.RedirectDelay, theApp.Shortener)
			if errors.Is(err, context.Canceled) {
				fmt.Fprintln(cmd.ErrOrStderr(), "redirect cancelled")
				return nil
			}
			if err != nil {
				return err
			}
			switch s := state.(type) {
			case redirect.Redirecting:
				fmt.Fprintln(cmd.OutOrStdout(), s.URL)
				return nil
			case redirect.NotFound:
				return errors.Wrap(errLinkNotFound, s.Token)
			}
			return nil
		},
	}
}
