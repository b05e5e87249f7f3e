package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fulmenhq/ncbisort/internal/layout"
	"github.com/fulmenhq/ncbisort/internal/manifest"
	"github.com/fulmenhq/ncbisort/internal/species"
	"github.com/fulmenhq/ncbisort/pkg/config"
	"github.com/fulmenhq/ncbisort/pkg/logger"
)

type inspectReport struct {
	Manifest   string            `json:"manifest" yaml:"manifest"`
	Target     string            `json:"target,omitempty" yaml:"target,omitempty"`
	Columns    []string          `json:"columns" yaml:"columns"`
	Assemblies []inspectAssembly `json:"assemblies" yaml:"assemblies"`
}

type inspectAssembly struct {
	Accession string `json:"accession" yaml:"accession"`
	Species   string `json:"species" yaml:"species"`
	// Sidecar is set only when a target tree is checked.
	Sidecar layout.SidecarState `json:"sidecar,omitempty" yaml:"sidecar,omitempty"`
}

func newInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the flattened manifest and species labels without copying",
		Long: `Inspect loads and flattens <ncbi>/data/assembly_data_report.jsonl and
prints the resulting metadata columns together with the species directory
each accession would be sorted into. With --target, the <accession>.info.csv
sidecar of each accession in that tree is reported as present, missing or
stale. Nothing is written.`,
		Args: cobra.NoArgs,
		RunE: runInspect,
	}
	cmd.Flags().String(config.KeyNCBI, "", "Unzipped ncbi folder (generally called ncbi_dataset)")
	cmd.Flags().String(config.KeyTarget, "", "Sorted tree whose metadata sidecars should be checked (optional)")
	cmd.Flags().String("output", "text", "Output format: text|json|yaml")
	return cmd
}

func runInspect(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("output")
	format = strings.ToLower(format)
	if format != "text" && format != "json" && format != "yaml" {
		return fmt.Errorf("unsupported output format: %s", format)
	}

	cfg, err := config.Load(cmd.Flags(), config.KeyNCBI)
	if err != nil {
		return err
	}
	report, err := buildInspectReport(cfg)
	if err != nil {
		return err
	}
	return writeInspectReport(cmd.OutOrStdout(), format, report)
}

func buildInspectReport(cfg config.Config) (*inspectReport, error) {
	logger.Debug("Inspecting manifest",
		logger.String("ncbi", cfg.NCBIRoot()),
		logger.Bool("check_sidecars", cfg.Target() != ""))

	table, err := manifest.Load(osfs.New(cfg.NCBIRoot()), manifest.ReportPath)
	if err != nil {
		return nil, err
	}

	var target billy.Filesystem
	if cfg.Target() != "" {
		target = osfs.New(cfg.Target())
	}
	columns := table.Columns()
	report := &inspectReport{
		Manifest: filepath.Join(cfg.NCBIRoot(), filepath.FromSlash(manifest.ReportPath)),
		Target:   cfg.Target(),
		Columns:  columns,
	}
	for i, row := range table.Rows() {
		acc := row.Value(manifest.AccessionField)
		if acc.IsNull() {
			return nil, fmt.Errorf("manifest row %d: %w: %s", i+1, species.ErrMissingField, manifest.AccessionField)
		}
		label, err := species.Label(row)
		if err != nil {
			return nil, fmt.Errorf("accession %s: %w", acc.String(), err)
		}
		entry := inspectAssembly{Accession: acc.String(), Species: label}
		if target != nil {
			entry.Sidecar, err = layout.CheckMetadata(target, label, entry.Accession, columns, table.Select(entry.Accession))
			if err != nil {
				return nil, fmt.Errorf("accession %s: %w", entry.Accession, err)
			}
		}
		report.Assemblies = append(report.Assemblies, entry)
	}
	return report, nil
}

func writeInspectReport(out io.Writer, format string, report *inspectReport) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %v", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to format YAML: %v", err)
		}
		return enc.Close()
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "Manifest: %s (%d assemblies, %d columns)\n", report.Manifest, len(report.Assemblies), len(report.Columns))
	if report.Target != "" {
		fmt.Fprintf(&b, "Target: %s\n", report.Target)
	}
	b.WriteString("Columns:\n")
	for _, c := range report.Columns {
		fmt.Fprintf(&b, "  %s\n", c)
	}
	b.WriteString("Assemblies:\n")
	for _, a := range report.Assemblies {
		if a.Sidecar != "" {
			fmt.Fprintf(&b, "  %-20s %s (%s)\n", a.Accession, a.Species, a.Sidecar)
			continue
		}
		fmt.Fprintf(&b, "  %-20s %s\n", a.Accession, a.Species)
	}
	_, err := out.Write(b.Bytes())
	return err
}
