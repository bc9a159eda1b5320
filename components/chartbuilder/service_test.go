package chartbuilder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	mu      sync.Mutex
	charts  []ChartDefinition
	calls   map[string]int
	block   chan struct{}
	nextID  string
	listErr error
}

func newStubStore() *stubStore {
	return &stubStore{calls: map[string]int{}, nextID: "generated"}
}

func (s *stubStore) count(op string) {
	s.mu.Lock()
	s.calls[op]++
	s.mu.Unlock()
}

func (s *stubStore) ListCharts(context.Context, string) ([]ChartDefinition, error) {
	s.count("list")
	return s.charts, s.listErr
}

func (s *stubStore) CreateChart(_ context.Context, _ string, def ChartDefinition) (ChartDefinition, error) {
	s.count("create")
	if s.block != nil {
		<-s.block
	}
	def.ID = s.nextID
	return def, nil
}

func (s *stubStore) UpdateChart(_ context.Context, _, chartID string, def ChartDefinition) (ChartDefinition, error) {
	s.count("update")
	def.ID = chartID
	return def, nil
}

func (s *stubStore) DeleteChart(context.Context, string, string) error {
	s.count("delete")
	return nil
}

type recordingHook struct {
	mu     sync.Mutex
	events []ChartEvent
}

func (h *recordingHook) ChartUpdated(_ context.Context, event ChartEvent) error {
	h.mu.Lock()
	h.events = append(h.events, event)
	h.mu.Unlock()
	return nil
}

func validDefinition() ChartDefinition {
	return ChartDefinition{
		Name:        "Comparativo",
		Kind:        KindBar,
		DatasetKind: DatasetBalancete,
		Indicators:  []string{"Receita"},
		Metrics:     []MetricSelection{{Key: "valor_periodo_1", Label: "Jan/2026"}},
		Options:     DefaultChartOptions(),
	}
}

func newTestService(store ChartStore, hook RefreshHook) (*Service, *InMemoryDatasetSource) {
	datasets := NewInMemoryDatasetSource()
	datasets.SeedBalancete("wf", balanceteFixture())
	return NewService(Options{
		Store:       store,
		Datasets:    datasets,
		RefreshHook: hook,
	}), datasets
}

func TestSaveChartCreatesAndNotifies(t *testing.T) {
	store := newStubStore()
	hook := &recordingHook{}
	svc, _ := newTestService(store, hook)

	saved, err := svc.SaveChart(context.Background(), "wf", validDefinition())
	require.NoError(t, err)
	assert.Equal(t, "generated", saved.ID)
	assert.Equal(t, 1, store.calls["create"])

	require.Len(t, hook.events, 1)
	assert.Equal(t, "create", hook.events[0].Reason)
	assert.Equal(t, "wf", hook.events[0].WorkflowID)
}

func TestSaveChartWithIDUpdates(t *testing.T) {
	store := newStubStore()
	hook := &recordingHook{}
	svc, _ := newTestService(store, hook)

	def := validDefinition()
	def.ID = "c9"
	_, err := svc.SaveChart(context.Background(), "wf", def)
	require.NoError(t, err)
	assert.Equal(t, 1, store.calls["update"])
	assert.Zero(t, store.calls["create"])
	assert.Equal(t, "update", hook.events[0].Reason)
}

func TestSaveChartRejectsInvalidDefinition(t *testing.T) {
	store := newStubStore()
	svc, _ := newTestService(store, nil)

	def := validDefinition()
	def.Indicators = nil
	_, err := svc.SaveChart(context.Background(), "wf", def)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, store.calls["create"])
}

func TestDeleteWithoutIDNeverTouchesStore(t *testing.T) {
	store := newStubStore()
	svc, _ := newTestService(store, nil)

	err := svc.DeleteChart(context.Background(), "wf", "")
	require.Error(t, err)
	assert.Zero(t, store.calls["delete"])
}

func TestDeleteChartInvalidatesAndNotifies(t *testing.T) {
	store := newStubStore()
	hook := &recordingHook{}
	svc, _ := newTestService(store, hook)

	require.NoError(t, svc.DeleteChart(context.Background(), "wf", "c1"))
	assert.Equal(t, 1, store.calls["delete"])
	require.Len(t, hook.events, 1)
	assert.Equal(t, "delete", hook.events[0].Reason)
	assert.Equal(t, "c1", hook.events[0].ChartID)
}

func TestConcurrentSaveReturnsInFlight(t *testing.T) {
	store := newStubStore()
	store.block = make(chan struct{})
	svc, _ := newTestService(store, nil)

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		_, err := svc.SaveChart(context.Background(), "wf", validDefinition())
		done <- err
	}()
	<-started
	// wait until the first save reached the store
	for {
		store.mu.Lock()
		reached := store.calls["create"] > 0
		store.mu.Unlock()
		if reached {
			break
		}
		time.Sleep(time.Millisecond)
	}

	_, err := svc.SaveChart(context.Background(), "wf", validDefinition())
	assert.ErrorIs(t, err, ErrRequestInFlight)

	close(store.block)
	require.NoError(t, <-done)

	// slot released, saving works again
	_, err = svc.SaveChart(context.Background(), "wf", validDefinition())
	assert.NoError(t, err)
}

func TestRenderChartMemoizes(t *testing.T) {
	store := newStubStore()
	svc, _ := newTestService(store, nil)
	def := validDefinition()
	def.ID = "c1"

	first, err := svc.RenderChart(context.Background(), "wf", def)
	require.NoError(t, err)
	assert.Contains(t, first, "Comparativo")

	second, err := svc.RenderChart(context.Background(), "wf", def)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

type countingRenderer struct {
	calls int
}

func (r *countingRenderer) Render(spec ChartSpec) (string, error) {
	r.calls++
	return "<div>" + spec.Title + "</div>", nil
}

func TestSaveInvalidatesRenderCache(t *testing.T) {
	store := newStubStore()
	renderer := &countingRenderer{}
	datasets := NewInMemoryDatasetSource()
	datasets.SeedBalancete("wf", balanceteFixture())
	svc := NewService(Options{Store: store, Datasets: datasets, Renderer: renderer})

	def := validDefinition()
	def.ID = "c1"
	_, err := svc.RenderChart(context.Background(), "wf", def)
	require.NoError(t, err)
	_, err = svc.RenderChart(context.Background(), "wf", def)
	require.NoError(t, err)
	assert.Equal(t, 1, renderer.calls)

	_, err = svc.SaveChart(context.Background(), "wf", validDefinition())
	require.NoError(t, err)

	_, err = svc.RenderChart(context.Background(), "wf", def)
	require.NoError(t, err)
	assert.Equal(t, 2, renderer.calls)
}

func TestMountChartsRegistersHandles(t *testing.T) {
	store := newStubStore()
	store.charts = []ChartDefinition{validDefinition(), validDefinition()}
	store.charts[0].ID = "a"
	store.charts[1].ID = "b"
	svc, _ := newTestService(store, nil)

	handles, err := svc.MountCharts(context.Background(), "wf")
	require.NoError(t, err)
	require.Len(t, handles, 2)

	handle, ok := svc.Registry().Handle(1)
	require.True(t, ok)
	assert.Equal(t, "b", handle.ChartID)
	assert.NotEmpty(t, handle.HTML)
}

func TestMountChartsDowngradesBrokenSlot(t *testing.T) {
	store := newStubStore()
	store.charts = []ChartDefinition{validDefinition(), validDefinition()}
	store.charts[0].ID = "a"
	store.charts[1].ID = "b"
	// second chart points at a category the workflow does not have
	store.charts[1].DatasetKind = DatasetAnaliseJP
	store.charts[1].Category = "inexistente"
	svc, _ := newTestService(store, nil)

	handles, err := svc.MountCharts(context.Background(), "wf")
	require.NoError(t, err)
	require.Len(t, handles, 2)
	assert.Contains(t, handles[1].HTML, "chart-error")
	assert.NotContains(t, handles[0].HTML, "chart-error")
}

func TestCanCreateChart(t *testing.T) {
	svc, _ := newTestService(newStubStore(), nil)
	assert.NoError(t, svc.CanCreateChart(context.Background(), "wf", DatasetBalancete))

	// workflow without any dataset
	assert.ErrorIs(t, svc.CanCreateChart(context.Background(), "outra", DatasetBalancete), ErrNoDataset)
	assert.ErrorIs(t, svc.CanCreateChart(context.Background(), "outra", DatasetAnaliseJP), ErrNoDataset)
}

func TestCanCreateChartAnalise(t *testing.T) {
	svc, datasets := newTestService(newStubStore(), nil)
	datasets.SeedAnalise("wf", Category{Slug: "vendas", Label: "Vendas"}, &AnaliseDataset{
		Fields:  []string{"regiao", "total"},
		Records: []map[string]string{{"regiao": "Sul", "total": "10"}},
	})

	assert.NoError(t, svc.CanCreateChart(context.Background(), "wf", DatasetAnaliseJP))
}

func TestSetIndicatorKindValidatesKind(t *testing.T) {
	store := newStubStore()
	svc, datasets := newTestService(store, nil)

	err := svc.SetIndicatorKind(context.Background(), "wf", "Receita", ValueKind("numero"))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	require.NoError(t, svc.SetIndicatorKind(context.Background(), "wf", "Receita", ValuePercentage))
	ds, err := datasets.BalanceteDataset(context.Background(), "wf")
	require.NoError(t, err)
	assert.Equal(t, ValuePercentage, ds.Record("Receita").ValueKind)
}

func TestServiceRequiresStore(t *testing.T) {
	svc := NewService(Options{Datasets: NewInMemoryDatasetSource()})
	_, err := svc.ListCharts(context.Background(), "wf")
	assert.True(t, errors.Is(err, errMissingStore))
}
