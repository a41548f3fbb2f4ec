package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/logger"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
)

// cliConfig is the subset of the service configuration shopctl reads from the
// environment. Flags override it.
type cliConfig struct {
	Catalog config.CatalogConfig
	Kafka   config.KafkaConfig
}

type app struct {
	cfg     cliConfig
	out     io.Writer
	log     *logger.Logger
	asJSON  bool
	verbose bool
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}
	if err := envconfig.Process(config.EnvPrefix, &a.cfg); err != nil {
		a.cfg.Catalog.Source = "products.json"
		a.cfg.Catalog.FetchTimeout = 10 * time.Second
	}

	root := &cobra.Command{
		Use:           "shopctl",
		Short:         "Inspect the storefront catalog and activity stream",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := "warn"
			if a.verbose {
				level = "debug"
			}
			a.log = logger.New(logger.Options{
				ServiceName: "shopctl",
				Level:       logger.ParseLevel(level),
				Format:      "console",
				Output:      cmd.ErrOrStderr(),
			})
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg.Catalog.Source, "catalog", a.cfg.Catalog.Source, "catalog file path or http(s) URL")
	flags.DurationVar(&a.cfg.Catalog.FetchTimeout, "timeout", a.cfg.Catalog.FetchTimeout, "catalog fetch timeout")
	flags.BoolVar(&a.asJSON, "json", false, "print JSON instead of a table")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newQueryCmd(a),
		newProductCmd(a),
		newActivityCmd(a),
	)
	return root
}

// loader builds a catalog loader for the configured source.
func (a *app) loader() *catalog.Loader {
	source := catalog.NewSource(a.cfg.Catalog.Source, a.cfg.Catalog.FetchTimeout)
	return catalog.NewLoader(source, a.log, catalog.WithFetchTimeout(a.cfg.Catalog.FetchTimeout))
}

func (a *app) pipeline() *catalog.Pipeline {
	return catalog.NewPipeline(catalog.Options{
		PageSize:        a.cfg.Catalog.PageSize,
		FreshnessWindow: a.cfg.Catalog.FreshnessWindow,
	})
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
