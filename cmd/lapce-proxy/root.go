// lapce-proxy hosts manifest-declared extensions: sandboxed WASM modules
// and legacy process plugins, all notifying one dispatcher.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/CyberFlameGO/lapce/application/config"
	"github.com/CyberFlameGO/lapce/application/dispatch"
	"github.com/CyberFlameGO/lapce/host/catalog"
	"github.com/CyberFlameGO/lapce/host/registry"
	"github.com/CyberFlameGO/lapce/host/watcher"
)

// rootFlags are shared by every subcommand.
type rootFlags struct {
	configFile string
	pluginsDir string
	logLevel   string
	watch      bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "lapce-proxy",
		Short:         "Host for Lapce extensions",
		Long:          "lapce-proxy discovers manifest-declared extensions and runs them sandboxed or as legacy processes.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "config file path")
	root.PersistentFlags().StringVar(&flags.pluginsDir, "plugins-dir", "", "plugins root directory (default ~/.lapce/plugins)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&flags.watch, "watch", false, "reload the catalog on plugins directory changes")

	root.AddCommand(newRunCmd(flags), newListCmd(flags), newSchemaCmd())
	return root
}

// loadConfig resolves the configuration and applies flag overrides.
func loadConfig(flags *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return nil, err
	}
	if flags.pluginsDir != "" {
		cfg.PluginsDir = flags.pluginsDir
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if flags.watch {
		cfg.Watch = true
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr,
		&slog.HandlerOptions{Level: cfg.SlogLevel()})))
	return cfg, nil
}

func newRunCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Discover, start and host all extensions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			dispatcher := dispatch.NewDispatcher()
			cat := catalog.New(dispatcher, catalog.WithPluginsDir(cfg.PluginsDir))
			defer cat.Close(context.Background())

			cat.Load()
			cat.StartAll(ctx)

			if cfg.Watch {
				w, err := watcher.New(cat, cfg.PluginsDir)
				if err != nil {
					slog.Warn("hot reload unavailable", "error", err)
				} else {
					defer w.Close()
					go w.Run(ctx)
				}
			}

			slog.Info("proxy running", "plugins", len(cat.Instances()), "dir", cfg.PluginsDir)
			<-ctx.Done()
			return nil
		},
	}
}

func newListCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every discovered extension",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			cat := catalog.New(dispatch.NewDispatcher(), catalog.WithPluginsDir(cfg.PluginsDir))
			defer cat.Close(cmd.Context())
			cat.Load()

			descs := cat.Descriptions()
			names := make([]string, 0, len(descs))
			for name := range descs {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				desc := descs[name]
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\t%s\n", name, desc.Version, desc.ExecPath)
			}
			return nil
		},
	}
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of every notification variant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := registry.Default()
			for _, method := range reg.List() {
				schema, _ := reg.GetSchema(method)
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", method, schema)
			}
			return nil
		},
	}
}
