package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrLongNight/MapFlow-sub000/flow/graph"
)

func newStoreCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage modules in the project database",
	}

	cmd.AddCommand(
		newStoreListCmd(a),
		newStoreImportCmd(a),
		newStoreExportCmd(a),
		newStoreDeleteCmd(a),
	)

	return cmd
}

func newStoreListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			mods, err := st.ListModules(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tPARTS\tUPDATED")

			for _, m := range mods {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", m.ID, m.Name, m.Parts, m.UpdatedAt.Format(time.DateTime))
			}

			return tw.Flush()
		},
	}
}

func newStoreImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json> ...",
		Short: "Store modules read from JSON files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}

				var m graph.Module

				err = json.Unmarshal(data, &m)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}

				err = st.SaveModule(cmd.Context(), &m)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "imported module %d %q from %s\n", m.ID, m.Name, path)
			}

			return nil
		},
	}
}

func newStoreExportCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <module-id>",
		Short: "Write a stored module as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseModuleID(args[0])
			if err != nil {
				return err
			}

			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			m, err := st.LoadModule(cmd.Context(), id)
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(m, "", "  ")
			if err != nil {
				return err
			}

			data = append(data, '\n')

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)

				return err
			}

			return os.WriteFile(output, data, 0o644)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func newStoreDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <module-id>",
		Short: "Remove a stored module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseModuleID(args[0])
			if err != nil {
				return err
			}

			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			err = st.DeleteModule(cmd.Context(), id)
			if err != nil {
				return err
			}

			a.logger.Info("module deleted", "id", id)

			return nil
		},
	}
}

func parseModuleID(s string) (graph.ModuleID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("module id %q: %w", s, err)
	}

	return graph.ModuleID(n), nil
}
