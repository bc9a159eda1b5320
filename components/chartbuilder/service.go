package chartbuilder

import (
	"context"
	"errors"
	"fmt"
	"html"
	"sync"
	"time"
)

var (
	errMissingStore    = errors.New("chartbuilder: chart store not configured")
	errMissingDatasets = errors.New("chartbuilder: dataset source not configured")
	errWorkflowID      = errors.New("chartbuilder: workflow id is required")
	errChartID         = errors.New("chartbuilder: chart id is required")

	// ErrRequestInFlight means an identical mutation is still running.
	// Callers surface it as a no-op rather than queueing a duplicate.
	ErrRequestInFlight = errors.New("chartbuilder: request already in flight")

	// ErrNoDataset means the workflow has no dataset with records, so the
	// wizard has nothing to chart and must not open.
	ErrNoDataset = errors.New("chartbuilder: workflow has no dataset with records")
)

// Options configures the chart builder Service. Every collaborator is
// provided via interface so applications can swap implementations.
type Options struct {
	Store       ChartStore
	Datasets    DatasetSource
	Renderer    Renderer
	Cache       RenderCache
	Registry    *HandleRegistry
	RefreshHook RefreshHook
	Telemetry   Telemetry
	CacheTTL    time.Duration
}

// Service orchestrates chart persistence, data shaping and rendering for a
// workflow's dashboard.
type Service struct {
	opts Options

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewService builds a Service with safe defaults.
func NewService(opts Options) *Service {
	if opts.Renderer == nil {
		opts.Renderer = NewEChartsRenderer()
	}
	if opts.Cache == nil {
		ttl := opts.CacheTTL
		if ttl <= 0 {
			ttl = 5 * time.Minute
		}
		opts.Cache = NewChartCache(ttl)
	}
	if opts.Registry == nil {
		opts.Registry = NewHandleRegistry()
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Service{opts: opts, inFlight: make(map[string]struct{})}
}

// Registry exposes the grid handle registry.
func (s *Service) Registry() *HandleRegistry { return s.opts.Registry }

// acquire claims the in-flight slot for a mutation target. The release
// function must be called exactly once.
func (s *Service) acquire(key string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[key]; busy {
		return nil, ErrRequestInFlight
	}
	s.inFlight[key] = struct{}{}
	return func() {
		s.mu.Lock()
		delete(s.inFlight, key)
		s.mu.Unlock()
	}, nil
}

// ListCharts returns the workflow's persisted chart definitions.
func (s *Service) ListCharts(ctx context.Context, workflowID string) ([]ChartDefinition, error) {
	store, err := s.store()
	if err != nil {
		return nil, err
	}
	if workflowID == "" {
		return nil, errWorkflowID
	}
	return store.ListCharts(ctx, workflowID)
}

// SaveChart validates and persists a definition, creating when it has no ID
// and updating otherwise. A second save for the same target while one is
// running returns ErrRequestInFlight.
func (s *Service) SaveChart(ctx context.Context, workflowID string, def ChartDefinition) (ChartDefinition, error) {
	store, err := s.store()
	if err != nil {
		return ChartDefinition{}, err
	}
	if workflowID == "" {
		return ChartDefinition{}, errWorkflowID
	}
	if err := ValidateDefinition(def); err != nil {
		return ChartDefinition{}, err
	}

	release, err := s.acquire("save:" + workflowID + ":" + def.ID)
	if err != nil {
		return ChartDefinition{}, err
	}
	defer release()

	var (
		saved  ChartDefinition
		reason string
	)
	if def.ID == "" {
		saved, err = store.CreateChart(ctx, workflowID, def)
		reason = "create"
	} else {
		saved, err = store.UpdateChart(ctx, workflowID, def.ID, def)
		reason = "update"
	}
	if err != nil {
		return ChartDefinition{}, err
	}

	s.opts.Cache.Invalidate(workflowID + ":")
	if err := s.opts.RefreshHook.ChartUpdated(ctx, ChartEvent{
		WorkflowID: workflowID,
		ChartID:    saved.ID,
		Definition: saved,
		Reason:     reason,
	}); err != nil {
		return ChartDefinition{}, err
	}
	s.record(ctx, "chartbuilder.chart."+reason, map[string]any{
		"workflow_id": workflowID,
		"chart_id":    saved.ID,
		"chart_type":  string(saved.Kind),
	})
	return saved, nil
}

// DeleteChart removes a chart. A missing chart ID fails before the store is
// touched, so an unsaved draft can be dismissed without a round trip.
func (s *Service) DeleteChart(ctx context.Context, workflowID, chartID string) error {
	store, err := s.store()
	if err != nil {
		return err
	}
	if workflowID == "" {
		return errWorkflowID
	}
	if chartID == "" {
		return errChartID
	}

	release, err := s.acquire("delete:" + workflowID + ":" + chartID)
	if err != nil {
		return err
	}
	defer release()

	if err := store.DeleteChart(ctx, workflowID, chartID); err != nil {
		return err
	}
	s.opts.Cache.Invalidate(workflowID + ":")
	if err := s.opts.RefreshHook.ChartUpdated(ctx, ChartEvent{
		WorkflowID: workflowID,
		ChartID:    chartID,
		Reason:     "delete",
	}); err != nil {
		return err
	}
	s.record(ctx, "chartbuilder.chart.delete", map[string]any{
		"workflow_id": workflowID,
		"chart_id":    chartID,
	})
	return nil
}

// ChartData shapes a definition against its workflow dataset without
// rendering. The preview pane uses this directly.
func (s *Service) ChartData(ctx context.Context, workflowID string, def ChartDefinition) (ChartData, error) {
	bundle, err := s.datasetBundle(ctx, workflowID, def)
	if err != nil {
		return ChartData{}, err
	}
	return BuildChartData(def, bundle)
}

// RenderChart produces the chart's HTML, memoized per workflow and
// definition content.
func (s *Service) RenderChart(ctx context.Context, workflowID string, def ChartDefinition) (string, error) {
	if workflowID == "" {
		return "", errWorkflowID
	}
	key := fmt.Sprintf("%s:%s:%s", workflowID, def.ID, definitionHash(def))
	return s.opts.Cache.GetOrRender(key, func() (string, error) {
		data, err := s.ChartData(ctx, workflowID, def)
		if err != nil {
			return "", err
		}
		spec, err := BuildSpec(def, data)
		if err != nil {
			return "", err
		}
		return s.opts.Renderer.Render(spec)
	})
}

// MountCharts renders every chart of a workflow and installs the results in
// the grid registry, one handle per list position. Handles already at those
// positions are destroyed first.
func (s *Service) MountCharts(ctx context.Context, workflowID string) ([]*Handle, error) {
	defs, err := s.ListCharts(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	handles := make([]*Handle, 0, len(defs))
	for position, def := range defs {
		html, err := s.RenderChart(ctx, workflowID, def)
		if err != nil {
			// One broken chart must not take down the grid: the slot gets
			// an error card and the rest keep rendering.
			html = renderErrorSlot(def)
			s.record(ctx, "chartbuilder.chart.render_error", map[string]any{
				"workflow_id": workflowID,
				"chart_id":    def.ID,
				"error":       err.Error(),
			})
		}
		handles = append(handles, s.opts.Registry.Register(position, def.ID, html, nil))
	}
	s.record(ctx, "chartbuilder.charts.mount", map[string]any{
		"workflow_id": workflowID,
		"count":       len(handles),
	})
	return handles, nil
}

// SetIndicatorKind updates how a balancete indicator's values are formatted
// everywhere it appears, then drops the workflow's cached renders.
func (s *Service) SetIndicatorKind(ctx context.Context, workflowID, indicator string, kind ValueKind) error {
	datasets, err := s.datasets()
	if err != nil {
		return err
	}
	if workflowID == "" {
		return errWorkflowID
	}
	if indicator == "" {
		return errors.New("chartbuilder: indicator name is required")
	}
	if err := ValidateValueKind(kind); err != nil {
		return err
	}

	release, err := s.acquire("indicator:" + workflowID + ":" + indicator)
	if err != nil {
		return err
	}
	defer release()

	if err := datasets.SetIndicatorKind(ctx, workflowID, indicator, kind); err != nil {
		return err
	}
	s.opts.Cache.Invalidate(workflowID + ":")
	s.record(ctx, "chartbuilder.indicator.kind", map[string]any{
		"workflow_id": workflowID,
		"indicator":   indicator,
		"kind":        string(kind),
	})
	return nil
}

// CanCreateChart reports whether the workflow holds a dataset with records
// for the given kind. Hosts call it before opening the wizard; an empty
// workflow returns ErrNoDataset.
func (s *Service) CanCreateChart(ctx context.Context, workflowID string, kind DatasetKind) error {
	datasets, err := s.datasets()
	if err != nil {
		return err
	}
	if workflowID == "" {
		return errWorkflowID
	}
	switch kind {
	case DatasetAnaliseJP:
		categories, err := datasets.AnaliseCategories(ctx, workflowID)
		if err != nil {
			return err
		}
		for _, category := range categories {
			ds, err := datasets.AnaliseDataset(ctx, workflowID, category.Slug)
			if err != nil {
				continue
			}
			if len(ds.Records) > 0 {
				return nil
			}
		}
		return ErrNoDataset
	default:
		ds, err := datasets.BalanceteDataset(ctx, workflowID)
		if err != nil || ds.TotalIndicators() == 0 {
			return ErrNoDataset
		}
		return nil
	}
}

// NotifyChartUpdated forwards an event to the configured refresh hook so
// transports can trigger re-renders without mutating anything.
func (s *Service) NotifyChartUpdated(ctx context.Context, event ChartEvent) error {
	return s.opts.RefreshHook.ChartUpdated(ctx, event)
}

func (s *Service) datasetBundle(ctx context.Context, workflowID string, def ChartDefinition) (DatasetBundle, error) {
	datasets, err := s.datasets()
	if err != nil {
		return DatasetBundle{}, err
	}
	if workflowID == "" {
		return DatasetBundle{}, errWorkflowID
	}
	switch def.DatasetKind {
	case DatasetBalancete:
		ds, err := datasets.BalanceteDataset(ctx, workflowID)
		if err != nil {
			return DatasetBundle{}, err
		}
		return DatasetBundle{Balancete: ds}, nil
	case DatasetAnaliseJP:
		ds, err := datasets.AnaliseDataset(ctx, workflowID, def.Category)
		if err != nil {
			return DatasetBundle{}, err
		}
		return DatasetBundle{Analise: ds}, nil
	default:
		return DatasetBundle{}, fmt.Errorf("chartbuilder: unknown dataset kind %q", def.DatasetKind)
	}
}

func (s *Service) store() (ChartStore, error) {
	if s.opts.Store == nil {
		return nil, errMissingStore
	}
	return s.opts.Store, nil
}

func (s *Service) datasets() (DatasetSource, error) {
	if s.opts.Datasets == nil {
		return nil, errMissingDatasets
	}
	return s.opts.Datasets, nil
}

func (s *Service) record(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

// renderErrorSlot is the degraded markup a grid slot shows when its chart
// cannot be rendered.
func renderErrorSlot(def ChartDefinition) string {
	name := def.Name
	if name == "" {
		name = "Gráfico"
	}
	return fmt.Sprintf(
		`<div class="chart-error"><strong>%s</strong><p>Não foi possível renderizar o gráfico</p></div>`,
		html.EscapeString(name),
	)
}

type noopRefreshHook struct{}

func (noopRefreshHook) ChartUpdated(context.Context, ChartEvent) error { return nil }
