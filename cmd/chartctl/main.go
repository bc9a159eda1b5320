package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	chartbuilder "github.com/A3ON-Tecnologia/dashboard-bi/components/chartbuilder"
)

type cli struct {
	Kinds    kindsCmd    `cmd:"" help:"List the chart kinds a catalog offers."`
	Catalog  catalogCmd  `cmd:"" help:"Write the built-in kind catalog to a YAML file."`
	Validate validateCmd `cmd:"" help:"Validate a chart definition JSON file."`
	Render   renderCmd   `cmd:"" help:"Render a chart definition against a dataset file."`
}

func main() {
	ctx := kong.Parse(&cli{},
		kong.Description("Chart tooling for workflow dashboards."),
		kong.UsageOnError(),
	)
	err := ctx.Run(context.Background())
	ctx.FatalIfErrorf(err)
}

type kindsCmd struct {
	CatalogPath string `type:"path" help:"Catalog YAML file (defaults to the built-in catalog)."`
	Dataset     string `help:"Filter kinds by dataset kind (balancete or analise_jp)."`
	JSON        bool   `help:"Emit JSON instead of a table."`
}

func (cmd *kindsCmd) Run(_ context.Context) error {
	catalog, err := loadCatalog(cmd.CatalogPath)
	if err != nil {
		return err
	}
	kinds := catalog.Kinds
	if cmd.Dataset != "" {
		kinds = catalog.KindsFor(chartbuilder.DatasetKind(cmd.Dataset))
	}
	if cmd.JSON {
		return json.NewEncoder(os.Stdout).Encode(kinds)
	}
	for _, entry := range kinds {
		stackable := ""
		if entry.Stackable {
			stackable = " (empilhável)"
		}
		fmt.Fprintf(os.Stdout, "%-16s %s%s\n", entry.Kind, entry.Label, stackable)
	}
	return nil
}

type catalogCmd struct {
	Out       string `required:"" type:"path" help:"Destination YAML file."`
	Overwrite bool   `help:"Overwrite an existing file."`
}

func (cmd *catalogCmd) Run(_ context.Context) error {
	if _, err := os.Stat(cmd.Out); err == nil && !cmd.Overwrite {
		return fmt.Errorf("chartctl: %s already exists (use --overwrite to replace)", cmd.Out)
	}
	if err := os.MkdirAll(filepath.Dir(cmd.Out), 0o755); err != nil {
		return fmt.Errorf("chartctl: mkdir %s: %w", filepath.Dir(cmd.Out), err)
	}
	file, err := os.Create(cmd.Out) //nolint:gosec
	if err != nil {
		return fmt.Errorf("chartctl: create %s: %w", cmd.Out, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(chartbuilder.DefaultKindCatalog()); err != nil {
		return fmt.Errorf("chartctl: write catalog: %w", err)
	}
	fmt.Fprintf(os.Stdout, "✓ Wrote catalog to %s\n", cmd.Out)
	return nil
}

type validateCmd struct {
	Path string `arg:"" type:"path" help:"Chart definition JSON file."`
}

func (cmd *validateCmd) Run(_ context.Context) error {
	def, err := loadDefinition(cmd.Path)
	if err != nil {
		return err
	}
	if err := chartbuilder.ValidateDefinition(def); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ %s is a valid %s chart\n", def.Name, def.Kind)
	return nil
}

type renderCmd struct {
	Definition string `arg:"" type:"path" help:"Chart definition JSON file."`
	Dataset    string `required:"" type:"path" help:"Dataset JSON file (balancete or analise_jp table)."`
	Out        string `type:"path" help:"Output HTML file (defaults to <chart-name>.html)."`
	Theme      string `help:"ECharts theme override."`
}

func (cmd *renderCmd) Run(_ context.Context) error {
	def, err := loadDefinition(cmd.Definition)
	if err != nil {
		return err
	}
	if err := chartbuilder.ValidateDefinition(def); err != nil {
		return err
	}
	bundle, err := loadDataset(cmd.Dataset, def.DatasetKind)
	if err != nil {
		return err
	}
	data, err := chartbuilder.BuildChartData(def, bundle)
	if err != nil {
		return err
	}
	spec, err := chartbuilder.BuildSpec(def, data)
	if err != nil {
		return err
	}

	var options []chartbuilder.EChartsRendererOption
	if cmd.Theme != "" {
		options = append(options, chartbuilder.WithTheme(cmd.Theme))
	}
	html, err := chartbuilder.NewEChartsRenderer(options...).Render(spec)
	if err != nil {
		return err
	}

	out := cmd.Out
	if out == "" {
		out = strcase.ToSnake(def.Name) + ".html"
	}
	if err := os.WriteFile(out, []byte(html), 0o644); err != nil {
		return fmt.Errorf("chartctl: write %s: %w", out, err)
	}
	fmt.Fprintf(os.Stdout, "✓ Rendered %s to %s\n", def.Name, out)
	return nil
}

func loadCatalog(path string) (*chartbuilder.KindCatalog, error) {
	if path == "" {
		return chartbuilder.DefaultKindCatalog(), nil
	}
	return chartbuilder.ReadKindCatalog(path)
}

func loadDefinition(path string) (chartbuilder.ChartDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return chartbuilder.ChartDefinition{}, fmt.Errorf("chartctl: read %s: %w", path, err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return chartbuilder.ChartDefinition{}, fmt.Errorf("chartctl: parse %s: %w", path, err)
	}
	return chartbuilder.NormalizeDefinition(raw)
}

func loadDataset(path string, kind chartbuilder.DatasetKind) (chartbuilder.DatasetBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return chartbuilder.DatasetBundle{}, fmt.Errorf("chartctl: read %s: %w", path, err)
	}
	switch kind {
	case chartbuilder.DatasetAnaliseJP:
		var ds chartbuilder.AnaliseDataset
		if err := json.Unmarshal(data, &ds); err != nil {
			return chartbuilder.DatasetBundle{}, fmt.Errorf("chartctl: parse %s: %w", path, err)
		}
		return chartbuilder.DatasetBundle{Analise: &ds}, nil
	default:
		var ds chartbuilder.BalanceteDataset
		if err := json.Unmarshal(data, &ds); err != nil {
			return chartbuilder.DatasetBundle{}, fmt.Errorf("chartctl: parse %s: %w", path, err)
		}
		return chartbuilder.DatasetBundle{Balancete: &ds}, nil
	}
}
