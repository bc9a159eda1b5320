package chartbuilder

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	catalogVersionV1 = "1"
	// CatalogVersion exposes the current catalog format version for tooling.
	CatalogVersion = catalogVersionV1
)

// KindCatalog models a YAML catalog describing the chart kinds a deployment
// offers, with their labels and capabilities. The built-in catalog covers
// every kind; deployments may serve a trimmed copy.
type KindCatalog struct {
	Version string        `json:"version" yaml:"version"`
	Name    string        `json:"name,omitempty" yaml:"name,omitempty"`
	Kinds   []CatalogKind `json:"kinds" yaml:"kinds"`
	Source  string        `json:"-" yaml:"-"`
}

// CatalogKind is one chart kind entry.
type CatalogKind struct {
	Kind      ChartKind     `json:"kind" yaml:"kind"`
	Label     string        `json:"label" yaml:"label"`
	Stackable bool          `json:"stackable,omitempty" yaml:"stackable,omitempty"`
	Datasets  []DatasetKind `json:"datasets,omitempty" yaml:"datasets,omitempty"`
}

// DefaultKindCatalog returns the full built-in catalog with pt-BR labels.
func DefaultKindCatalog() *KindCatalog {
	both := []DatasetKind{DatasetBalancete, DatasetAnaliseJP}
	return &KindCatalog{
		Version: catalogVersionV1,
		Name:    "builtin",
		Kinds: []CatalogKind{
			{Kind: KindBar, Label: "Barras", Stackable: true, Datasets: both},
			{Kind: KindBarHorizontal, Label: "Barras Horizontais", Stackable: true, Datasets: both},
			{Kind: KindLine, Label: "Linhas", Datasets: both},
			{Kind: KindArea, Label: "Área", Stackable: true, Datasets: both},
			{Kind: KindPie, Label: "Pizza", Datasets: both},
			{Kind: KindDonut, Label: "Rosca", Datasets: both},
			{Kind: KindTable, Label: "Tabela", Datasets: both},
		},
	}
}

// KindsFor filters the catalog to the kinds a dataset kind can use.
func (c *KindCatalog) KindsFor(dataset DatasetKind) []CatalogKind {
	var out []CatalogKind
	for _, entry := range c.Kinds {
		if len(entry.Datasets) == 0 {
			out = append(out, entry)
			continue
		}
		for _, d := range entry.Datasets {
			if d == dataset {
				out = append(out, entry)
				break
			}
		}
	}
	return out
}

// ReadKindCatalog loads a catalog file from disk.
func ReadKindCatalog(path string) (*KindCatalog, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("chartbuilder: open catalog %s: %w", path, err)
	}
	defer f.Close()
	catalog, err := DecodeKindCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("chartbuilder: decode catalog %s: %w", path, err)
	}
	catalog.Source = path
	return catalog, nil
}

// DecodeKindCatalog reads a catalog from any reader.
func DecodeKindCatalog(r io.Reader) (*KindCatalog, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var catalog KindCatalog
	if err := decoder.Decode(&catalog); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("chartbuilder: catalog is empty")
		}
		return nil, fmt.Errorf("chartbuilder: parse catalog: %w", err)
	}
	if catalog.Version == "" {
		catalog.Version = catalogVersionV1
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// Validate ensures the catalog satisfies required fields and names only
// known kinds.
func (c *KindCatalog) Validate() error {
	if c.Version != catalogVersionV1 {
		return fmt.Errorf("chartbuilder: unsupported catalog version %q", c.Version)
	}
	seen := make(map[ChartKind]struct{}, len(c.Kinds))
	for idx, entry := range c.Kinds {
		if entry.Kind == "" {
			return fmt.Errorf("chartbuilder: catalog entry at index %d is missing kind", idx)
		}
		if !KnownChartKind(entry.Kind) {
			return fmt.Errorf("chartbuilder: catalog names unknown kind %q", entry.Kind)
		}
		if entry.Label == "" {
			return fmt.Errorf("chartbuilder: catalog kind %s is missing label", entry.Kind)
		}
		if _, exists := seen[entry.Kind]; exists {
			return fmt.Errorf("chartbuilder: catalog duplicates kind %s", entry.Kind)
		}
		if entry.Stackable && !Stackable(entry.Kind) {
			return fmt.Errorf("chartbuilder: kind %s cannot be stackable", entry.Kind)
		}
		seen[entry.Kind] = struct{}{}
	}
	return nil
}
