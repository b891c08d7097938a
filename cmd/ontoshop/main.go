// Package main provides the ontoshop command line client.
// It drives the shop core against the ontology file named by the config.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/underlay/ontoshop"
	"github.com/underlay/ontoshop/config"
	"github.com/underlay/ontoshop/media"
	"github.com/underlay/ontoshop/rows"
)

const (
	Version = "0.1.0"
	appName = "ontoshop"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds what every subcommand needs once the config is loaded
type app struct {
	configPath string
	ontology   string
	role       string
	user       string
	logLevel   string

	cfg     *config.Config
	logger  *zap.Logger
	shop    *ontoshop.Shop
	session ontoshop.Session
}

func rootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Ontology-backed shop",
		Long: `ontoshop manages products, orders and feedback stored as RDF triples
in a single RDF/XML ontology file.`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Config file path (YAML)")
	flags.StringVar(&a.ontology, "ontology", "", "Ontology file, overrides ontology_path")
	flags.StringVar(&a.role, "role", string(ontoshop.RoleAdmin), "Caller role (user, admin)")
	flags.StringVar(&a.user, "user", defaultUser(), "Caller username")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error), overrides log_level")

	cmd.AddCommand(
		productsCmd(a),
		ordersCmd(a),
		feedbackCmd(a),
		exportCmd(a),
		importCmd(a),
		configCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)

	return cmd
}

func defaultUser() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "cli"
}

func (a *app) loadConfig() error {
	if a.cfg != nil {
		return nil
	}
	cfg, err := config.Load(a.configPath, Version)
	if err != nil {
		return err
	}
	if a.ontology != "" {
		cfg.OntologyPath = a.ontology
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// open builds the logger, the row store and the shop
func (a *app) open() error {
	if a.shop != nil {
		return nil
	}
	if err := a.loadConfig(); err != nil {
		return err
	}

	level, _ := a.cfg.Level()
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	logger, err := zc.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	a.logger = logger.With(zap.String("env", a.cfg.Env))

	rowStore, err := rows.OpenBadger(a.cfg.Rows.Path, a.cfg.Rows.InMemory, a.logger)
	if err != nil {
		return fmt.Errorf("open feedback rows: %w", err)
	}

	metrics := ontoshop.NewMetrics(nil)
	file := ontoshop.NewFileBackend(a.cfg.OntologyPath, a.logger, metrics)
	var backend ontoshop.Backend = file
	if a.cfg.CacheGraph {
		cached, err := ontoshop.NewCachedBackend(file)
		if err != nil {
			rowStore.Close()
			return fmt.Errorf("watch ontology file: %w", err)
		}
		backend = cached
	}

	a.shop = ontoshop.New(ontoshop.Options{
		Backend: backend,
		Rows:    rowStore,
		Images:  media.New(a.cfg.MediaRoot),
		Logger:  a.logger,
		Metrics: metrics,
	})
	a.session = ontoshop.Session{Username: a.user, Role: ontoshop.Role(a.role)}
	return nil
}

func (a *app) close() error {
	var err error
	if a.shop != nil {
		err = a.shop.Close()
		a.shop = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return err
}

// run opens the shop before calling fn and closes it afterwards, whether or
// not fn fails
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		if err := a.open(); err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, a.close())
		}()
		return fn(cmd, args)
	}
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
