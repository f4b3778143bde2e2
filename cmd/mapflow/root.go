package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MrLongNight/MapFlow-sub000/flow/graph"
	"github.com/MrLongNight/MapFlow-sub000/internal/config"
	"github.com/MrLongNight/MapFlow-sub000/internal/store"
)

type app struct {
	dbPath   string
	logLevel string
	logger   *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "mapflow",
		Short: "Inspect, evaluate and store module graphs",
		Long: `mapflow works with module graphs: parts connected through typed
sockets, trigger inputs mapped to part parameters and master/slave links.

It lists socket schemas, renders and evaluates modules from JSON files or
the project database, and moves modules in and out of the database.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := config.NewLogger(cmd.ErrOrStderr(), a.logLevel)
			if err != nil {
				return err
			}

			a.logger = logger

			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.dbPath, "db", config.DBPath(), "project database path ($"+config.EnvDB+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", config.LogLevel(),
		"log level: debug, info, warn or error ($"+config.EnvLogLevel+")")

	root.AddCommand(
		newSocketsCmd(),
		newDemoCmd(a),
		newInspectCmd(a),
		newEvalCmd(a),
		newStoreCmd(a),
	)

	return root
}

func (a *app) openStore() (*store.Store, error) {
	path, err := config.ExpandHome(a.dbPath)
	if err != nil {
		return nil, err
	}

	return store.Open(path, store.WithLogger(a.logger))
}

// loadModule reads a module from a JSON file, or from the project database
// when arg is a module id and no such file exists.
func (a *app) loadModule(ctx context.Context, arg string) (*graph.Module, error) {
	data, err := os.ReadFile(arg)
	if err == nil {
		var m graph.Module

		err = json.Unmarshal(data, &m)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", arg, err)
		}

		return &m, nil
	}

	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	id, perr := strconv.ParseUint(arg, 10, 64)
	if perr != nil {
		return nil, err
	}

	st, err := a.openStore()
	if err != nil {
		return nil, err
	}
	defer st.Close()

	return st.LoadModule(ctx, graph.ModuleID(id))
}
