package chartbuilder

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// InMemoryChartStore provides a concurrency-safe default store. Production
// deployments back ChartStore with the reporting API instead.
type InMemoryChartStore struct {
	mu     sync.RWMutex
	charts map[string][]ChartDefinition
}

// NewInMemoryChartStore creates an empty chart store.
func NewInMemoryChartStore() *InMemoryChartStore {
	return &InMemoryChartStore{charts: make(map[string][]ChartDefinition)}
}

// ListCharts returns the workflow's charts in insertion order.
func (s *InMemoryChartStore) ListCharts(_ context.Context, workflowID string) ([]ChartDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ChartDefinition(nil), s.charts[workflowID]...), nil
}

// CreateChart stores a new definition under a generated ID.
func (s *InMemoryChartStore) CreateChart(_ context.Context, workflowID string, def ChartDefinition) (ChartDefinition, error) {
	def.ID = uuid.NewString()
	s.mu.Lock()
	s.charts[workflowID] = append(s.charts[workflowID], def)
	s.mu.Unlock()
	return def, nil
}

// UpdateChart replaces an existing definition in place.
func (s *InMemoryChartStore) UpdateChart(_ context.Context, workflowID, chartID string, def ChartDefinition) (ChartDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.charts[workflowID] {
		if existing.ID == chartID {
			def.ID = chartID
			s.charts[workflowID][i] = def
			return def, nil
		}
	}
	return ChartDefinition{}, fmt.Errorf("chartbuilder: chart %s not found in workflow %s", chartID, workflowID)
}

// DeleteChart removes a definition, preserving the order of the rest.
func (s *InMemoryChartStore) DeleteChart(_ context.Context, workflowID, chartID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	charts := s.charts[workflowID]
	for i, existing := range charts {
		if existing.ID == chartID {
			s.charts[workflowID] = append(charts[:i], charts[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("chartbuilder: chart %s not found in workflow %s", chartID, workflowID)
}

// InMemoryDatasetSource serves fixed datasets per workflow. Tests and the
// example app seed it directly.
type InMemoryDatasetSource struct {
	mu         sync.RWMutex
	balancetes map[string]*BalanceteDataset
	analises   map[string]map[string]*AnaliseDataset
	categories map[string][]Category
}

// NewInMemoryDatasetSource creates an empty dataset source.
func NewInMemoryDatasetSource() *InMemoryDatasetSource {
	return &InMemoryDatasetSource{
		balancetes: make(map[string]*BalanceteDataset),
		analises:   make(map[string]map[string]*AnaliseDataset),
		categories: make(map[string][]Category),
	}
}

// SeedBalancete installs a workflow's balancete dataset.
func (s *InMemoryDatasetSource) SeedBalancete(workflowID string, ds *BalanceteDataset) {
	s.mu.Lock()
	s.balancetes[workflowID] = ds
	s.mu.Unlock()
}

// SeedAnalise installs one category table of an analise_jp workflow.
func (s *InMemoryDatasetSource) SeedAnalise(workflowID string, category Category, ds *AnaliseDataset) {
	s.mu.Lock()
	if s.analises[workflowID] == nil {
		s.analises[workflowID] = make(map[string]*AnaliseDataset)
	}
	s.analises[workflowID][category.Slug] = ds
	s.categories[workflowID] = append(s.categories[workflowID], category)
	s.mu.Unlock()
}

// BalanceteDataset returns the workflow's balancete table.
func (s *InMemoryDatasetSource) BalanceteDataset(_ context.Context, workflowID string) (*BalanceteDataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.balancetes[workflowID]
	if !ok {
		return nil, fmt.Errorf("chartbuilder: workflow %s has no balancete dataset", workflowID)
	}
	return ds, nil
}

// AnaliseDataset returns one category table of the workflow.
func (s *InMemoryDatasetSource) AnaliseDataset(_ context.Context, workflowID, category string) (*AnaliseDataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.analises[workflowID][category]
	if !ok {
		return nil, fmt.Errorf("chartbuilder: workflow %s has no category %q", workflowID, category)
	}
	return ds, nil
}

// AnaliseCategories lists the workflow's seeded categories.
func (s *InMemoryDatasetSource) AnaliseCategories(_ context.Context, workflowID string) ([]Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Category(nil), s.categories[workflowID]...), nil
}

// SetIndicatorKind retags every record matching the indicator name.
func (s *InMemoryDatasetSource) SetIndicatorKind(_ context.Context, workflowID, indicator string, kind ValueKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.balancetes[workflowID]
	if !ok {
		return fmt.Errorf("chartbuilder: workflow %s has no balancete dataset", workflowID)
	}
	record := ds.Record(indicator)
	if record == nil {
		return fmt.Errorf("chartbuilder: indicator %q not found in workflow %s", indicator, workflowID)
	}
	record.ValueKind = kind
	return nil
}
