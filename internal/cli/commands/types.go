package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapflow/internal/cli/output"
	"github.com/leapstack-labs/leapflow/internal/connect"
	"github.com/leapstack-labs/leapflow/internal/registry"
	"github.com/spf13/cobra"
)

// TypesOptions holds options for the types command.
type TypesOptions struct {
	Search string
	Fields bool
}

// NewTypesCommand creates the types command.
func NewTypesCommand() *cobra.Command {
	opts := &TypesOptions{}
	cmd := &cobra.Command{
		Use:   "types",
		Short: "List the node type palette",
		Long: `List every node type the editor can place, in palette order.

Each entry shows its label, the table it is mirrored into, and which
types it may connect to. Use --fields to include the column schema.`,
		Example: `  # List all node types
  leapflow types

  # Filter the palette
  leapflow types --search check

  # Include column schemas as JSON
  leapflow types --fields -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTypes(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "Case-insensitive filter on label or type name")
	cmd.Flags().BoolVar(&opts.Fields, "fields", false, "Show the column schema of each type")

	return cmd
}

func runTypes(cmd *cobra.Command, opts *TypesOptions) error {
	r := NewCommandContext(cmd).Renderer
	specs := registry.Default().Search(opts.Search)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return typesJSON(r, specs, opts.Fields)
	default:
		return typesTable(r, specs, opts.Fields)
	}
}

// TypeOutput is the JSON form of a palette entry.
type TypeOutput struct {
	Type     string               `json:"type"`
	Label    string               `json:"label"`
	Color    string               `json:"color"`
	Table    string               `json:"table,omitempty"`
	Targets  []string             `json:"targets"`
	Fields   []registry.FieldSpec `json:"fields,omitempty"`
	Category string               `json:"category"`
}

func typesJSON(r *output.Renderer, specs []registry.TypeSpec, withFields bool) error {
	out := make([]TypeOutput, 0, len(specs))
	for _, s := range specs {
		t := TypeOutput{
			Type:     string(s.Type),
			Label:    s.Label,
			Color:    s.Color,
			Targets:  targetNames(s),
			Category: category(s),
		}
		if s.TableBacked {
			t.Table = s.TableKey()
		}
		if withFields {
			t.Fields = s.Fields
		}
		out = append(out, t)
	}
	return r.JSON(out)
}

func typesTable(r *output.Renderer, specs []registry.TypeSpec, withFields bool) error {
	if len(specs) == 0 {
		r.Muted("No node types match.")
		return nil
	}
	styles := r.Styles()

	r.Header(1, "Node Types")
	rows := make([][]any, 0, len(specs))
	for _, s := range specs {
		table := "-"
		if s.TableBacked {
			table = s.TableKey()
		}
		targets := strings.Join(targetNames(s), ", ")
		if targets == "" {
			targets = "-"
		}
		rows = append(rows, []any{styles.Swatch(s.Color, string(s.Type)), s.Label, table, len(s.Fields), targets})
	}
	r.Table([]string{"Type", "Label", "Table", "Fields", "Connects to"}, rows)

	if !withFields {
		return nil
	}
	for _, s := range specs {
		r.Println("")
		r.Header(2, fmt.Sprintf("%s fields", s.Type))
		fieldRows := make([][]any, 0, len(s.Fields))
		for _, f := range s.Fields {
			fieldRows = append(fieldRows, []any{f.Name, f.Label, string(f.Kind), fmt.Sprint(f.Default), optionValues(f)})
		}
		r.Table([]string{"Name", "Label", "Kind", "Default", "Options"}, fieldRows)
	}
	return nil
}

func targetNames(s registry.TypeSpec) []string {
	targets := connect.Targets(s.Type)
	out := make([]string, len(targets))
	for i, t := range targets {
		out[i] = string(t)
	}
	return out
}

func category(s registry.TypeSpec) string {
	if s.TableBacked {
		return "tabular"
	}
	return "graph-only"
}

func optionValues(f registry.FieldSpec) string {
	if len(f.Options) == 0 {
		return ""
	}
	vals := make([]string, len(f.Options))
	for i, o := range f.Options {
		vals[i] = o.Value
	}
	return strings.Join(vals, ", ")
}
