package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"evolve/internal/config"
	"evolve/internal/evo"
	"evolve/internal/storage"
	"evolve/pkg/evolve"
)

type globalFlags struct {
	storeKind string
	dbPath    string
	logFormat string
	logLevel  string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "evolvectl",
		Short:         "Evolve programs and expressions against regression targets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.storeKind, "store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	root.PersistentFlags().StringVar(&g.dbPath, "db", "evolve.db", "sqlite database path")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "text", "log format: text|json")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "log level: debug|info|warn|error")

	root.AddCommand(newRunCmd(g), newRunsCmd(g), newHistoryCmd(g), newDiagnosticsCmd(g))
	return root
}

func newRunCmd(g *globalFlags) *cobra.Command {
	var (
		configPath  string
		kind        string
		target      string
		generations int
		seed        int64
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one evolution and store its history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := config.Load(configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("target") {
				params[config.KeyTarget] = target
			}
			if flags.Changed("generations") {
				params[config.KeyGenerations] = strconv.Itoa(generations)
			}
			if flags.Changed("seed") {
				params[evo.KeySeed] = strconv.FormatInt(seed, 10)
			}

			client, err := g.client(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			summary, err := client.Run(cmd.Context(), evolve.RunRequest{Kind: kind, Params: params})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), summary)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file")
	cmd.Flags().StringVar(&kind, "kind", evolve.KindProgram, "chromosome kind: program|expr")
	cmd.Flags().StringVar(&target, "target", "square", "regression target: cos|cubic|square|step")
	cmd.Flags().IntVar(&generations, "generations", 50, "generations to evolve")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")
	return cmd
}

func newRunsCmd(g *globalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := g.client(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			runs, err := client.Runs(cmd.Context(), evolve.RunsRequest{Limit: limit})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), runs)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "max runs to list")
	return cmd
}

func newHistoryCmd(g *globalFlags) *cobra.Command {
	var sel runSelection
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the best fitness of every generation of a run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := g.client(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			history, err := client.FitnessHistory(cmd.Context(), evolve.FitnessHistoryRequest{
				RunID:  sel.runID,
				Latest: sel.latest,
				Limit:  sel.limit,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), history)
		},
	}
	sel.bind(cmd)
	return cmd
}

func newDiagnosticsCmd(g *globalFlags) *cobra.Command {
	var sel runSelection
	cmd := &cobra.Command{
		Use:   "diagnostics",
		Short: "Print per-generation diagnostics of a run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := g.client(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			diagnostics, err := client.Diagnostics(cmd.Context(), evolve.DiagnosticsRequest{
				RunID:  sel.runID,
				Latest: sel.latest,
				Limit:  sel.limit,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), diagnostics)
		},
	}
	sel.bind(cmd)
	return cmd
}

type runSelection struct {
	runID  string
	latest bool
	limit  int
}

func (s *runSelection) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.runID, "run", "", "run id")
	cmd.Flags().BoolVar(&s.latest, "latest", false, "use the most recent run")
	cmd.Flags().IntVar(&s.limit, "limit", 0, "max generations to print (0 for all)")
	cmd.MarkFlagsMutuallyExclusive("run", "latest")
	cmd.MarkFlagsOneRequired("run", "latest")
}

func (g *globalFlags) client(logOut io.Writer) (*evolve.Client, error) {
	logger, err := newLogger(logOut, g.logFormat, g.logLevel)
	if err != nil {
		return nil, err
	}
	return evolve.New(evolve.Options{StoreKind: g.storeKind, DBPath: g.dbPath, Logger: logger})
}

func newLogger(w io.Writer, format, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
