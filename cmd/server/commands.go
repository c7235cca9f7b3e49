package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/samber/do"
	"github.com/serroba/url-shortener/internal/container"
	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/spf13/cobra"
)

func addCommands(root *cobra.Command) {
	var longURL string

	shortenCmd := &cobra.Command{
		Use:   "shorten",
		Short: "Create a short code for a long URL",
		Example: `  server shorten --url="https://example.com/very/long/path"
  server shorten --store=postgres --database-url=postgres://... --url=...`,
		Args: cobra.NoArgs,
		Run: humacli.WithOptions(func(cmd *cobra.Command, _ []string, options *container.Options) {
			exitOnError(cmd, withInjector(options, func(injector *do.Injector) error {
				return runShorten(cmd.Context(), injector, longURL, cmd.OutOrStdout())
			}))
		}),
	}
	shortenCmd.Flags().StringVar(&longURL, "url", "", "The long URL to shorten")
	_ = shortenCmd.MarkFlagRequired("url")

	resolveCmd := &cobra.Command{
		Use:   "resolve <code>",
		Short: "Print the long URL stored for a short code",
		Args:  cobra.ExactArgs(1),
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, options *container.Options) {
			exitOnError(cmd, withInjector(options, func(injector *do.Injector) error {
				return runResolve(cmd.Context(), injector, args[0], cmd.OutOrStdout())
			}))
		}),
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the mapping schema in the configured store",
		Args:  cobra.NoArgs,
		Run: humacli.WithOptions(func(cmd *cobra.Command, _ []string, options *container.Options) {
			exitOnError(cmd, withInjector(options, func(injector *do.Injector) error {
				return runMigrate(cmd.Context(), injector, cmd.OutOrStdout())
			}))
		}),
	}

	root.AddCommand(shortenCmd, resolveCmd, migrateCmd)
}

// withInjector builds the store and service graph, runs f and shuts down.
func withInjector(options *container.Options, f func(*do.Injector) error) error {
	injector := do.New()
	do.ProvideValue(injector, options)
	container.LoggerPackage(injector)
	container.RedisPackage(injector)
	container.StorePackage(injector)
	container.ShortenerPackage(injector)

	err := f(injector)

	if shutdownErr := injector.Shutdown(); err == nil {
		err = shutdownErr
	}

	return err
}

func exitOnError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}

	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)

	os.Exit(1)
}

func runShorten(ctx context.Context, injector *do.Injector, longURL string, out io.Writer) error {
	service, err := do.Invoke[*shortener.Service](injector)
	if err != nil {
		return err
	}

	shortURL, err := service.Shorten(ctx, longURL)
	if err != nil {
		return err
	}

	options := do.MustInvoke[*container.Options](injector)

	_, err = fmt.Fprintf(out, "code: %s\nshort_url: %s/%s\n", shortURL.Code, options.PublicBaseURL(), shortURL.Code)

	return err
}

func runResolve(ctx context.Context, injector *do.Injector, code string, out io.Writer) error {
	service, err := do.Invoke[*shortener.Service](injector)
	if err != nil {
		return err
	}

	shortURL, err := service.Resolve(ctx, shortener.Code(code))
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, shortURL.OriginalURL)

	return err
}

func runMigrate(ctx context.Context, injector *do.Injector, out io.Writer) error {
	urlStore, err := do.Invoke[container.Store](injector)
	if err != nil {
		return err
	}

	if migrator, ok := urlStore.(container.Migrator); ok {
		if err := migrator.Migrate(ctx); err != nil {
			return err
		}
	}

	_, err = fmt.Fprintln(out, "schema ready")

	return err
}
