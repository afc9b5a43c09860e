package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/tabula/internal/cli"
	"github.com/aretw0/tabula/internal/presentation/graph"
	"github.com/aretw0/tabula/pkg/schemafile"
)

func newSchemaCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect schema files and the schema catalog",
	}
	cmd.AddCommand(newSchemaLintCmd(), newSchemaPrintCmd(), newSchemaListCmd(a))
	return cmd
}

func newSchemaLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint <file>...",
		Short: "Check schema files for definition errors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			var errs []error
			for _, path := range args {
				s, err := schemafile.LoadFile(path, nil)
				if err != nil {
					fmt.Fprintf(out, "✘ %s\n", path)
					errs = append(errs, fmt.Errorf("%s: %w", path, err))
					continue
				}
				fmt.Fprintf(out, "✔ %s (%s, %d columns, %d table checks)\n",
					path, s.Name(), len(s.Columns()), len(s.Checks()))
			}
			return errors.Join(errs...)
		},
	}
}

func newSchemaPrintCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "print <file>",
		Short: "Print a schema file as normalized YAML or a Mermaid diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := schemafile.LoadFile(args[0], nil)
			if err != nil {
				return err
			}
			switch format {
			case "yaml":
				data, err := schemafile.Encode(s)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			case "mermaid":
				_, err := fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(s, nil))
				return err
			default:
				return fmt.Errorf("unknown format %q (want yaml or mermaid)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", "yaml", "output format: yaml or mermaid")
	return cmd
}

func newSchemaListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the schemas of the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loader, err := cli.NewLoader(a.cfg.SchemaDir, nil, a.logger)
			if err != nil {
				return err
			}
			names, err := loader.ListSchemas(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
