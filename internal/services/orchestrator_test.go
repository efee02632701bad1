package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"map-route-service/internal/domain"
	"map-route-service/internal/ports"
)

type mockGeocoder struct {
	mu     sync.Mutex
	places map[string]domain.ResolvedPlace
	block  map[string]chan struct{}
	calls  []string
}

func (m *mockGeocoder) Resolve(ctx context.Context, query string) (domain.ResolvedPlace, error) {
	m.mu.Lock()
	m.calls = append(m.calls, query)
	gate := m.block[query]
	place, ok := m.places[query]
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if !ok {
		return domain.ResolvedPlace{}, domain.ErrNotFound
	}
	return place, nil
}

func (m *mockGeocoder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type mockRouter struct {
	mu     sync.Mutex
	routes map[string]domain.Route // keyed by start query's lat
	err    error
	block  chan struct{}
	calls  int
}

func routeKey(from domain.Coordinate) string {
	return string(rune('A' + int(from.Lat)))
}

func (m *mockRouter) FetchRoute(ctx context.Context, from, to domain.Coordinate) (domain.Route, error) {
	m.mu.Lock()
	m.calls++
	gate := m.block
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.Route{}, m.err
	}
	r, ok := m.routes[routeKey(from)]
	if !ok {
		return domain.Route{}, domain.ErrNoRouteFound
	}
	return r, nil
}

type mockPOIProvider struct {
	mu      sync.Mutex
	results map[domain.POICategory][]domain.PointOfInterest
	block   map[domain.POICategory]chan struct{}
	started map[domain.POICategory]chan struct{}
	err     error
}

func (m *mockPOIProvider) FetchPOIs(ctx context.Context, region domain.BoundingRegion, category domain.POICategory) ([]domain.PointOfInterest, error) {
	m.mu.Lock()
	gate := m.block[category]
	started := m.started[category]
	m.mu.Unlock()

	if started != nil {
		close(started)
	}
	if gate != nil {
		<-gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.results[category], nil
}

type mockHistory struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry
	nextID  int64
}

func (m *mockHistory) Record(ctx context.Context, c ports.HistoryCandidate) (domain.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	e := domain.HistoryEntry{
		ID:              m.nextID,
		StartQuery:      c.StartQuery,
		DestQuery:       c.DestQuery,
		StartCoordinate: c.StartCoordinate,
		DestCoordinate:  c.DestCoordinate,
	}

	kept := []domain.HistoryEntry{e}
	for _, old := range m.entries {
		if old.StartQuery == c.StartQuery && old.DestQuery == c.DestQuery {
			continue
		}
		kept = append(kept, old)
	}
	if len(kept) > domain.HistoryLimit {
		kept = kept[:domain.HistoryLimit]
	}
	m.entries = kept
	return e, nil
}

func (m *mockHistory) List(ctx context.Context) ([]domain.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.HistoryEntry(nil), m.entries...), nil
}

func (m *mockHistory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	return nil
}

func (m *mockHistory) Replay(ctx context.Context, id int64) (domain.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return domain.HistoryEntry{}, errors.New("not found")
}

var (
	delhi = domain.ResolvedPlace{
		Query:       "Delhi",
		Coordinate:  domain.Coordinate{Lat: 0, Lon: 77.209},
		DisplayName: "Delhi, India",
	}
	agra = domain.ResolvedPlace{
		Query:       "Agra",
		Coordinate:  domain.Coordinate{Lat: 1, Lon: 78.008},
		DisplayName: "Agra, India",
	}
)

func delhiAgraRoute() domain.Route {
	return domain.Route{
		Path: []domain.Coordinate{
			{Lat: 0, Lon: 77.209},
			{Lat: 0.5, Lon: 77.6},
			{Lat: 1, Lon: 78.008},
		},
		DistanceMeters:  233500,
		DurationSeconds: 10800,
	}
}

func newTestOrchestrator() (*Orchestrator, *mockGeocoder, *mockRouter, *mockPOIProvider, *mockHistory) {
	g := &mockGeocoder{
		places: map[string]domain.ResolvedPlace{"Delhi": delhi, "Agra": agra},
		block:  map[string]chan struct{}{},
	}
	r := &mockRouter{routes: map[string]domain.Route{
		routeKey(delhi.Coordinate): delhiAgraRoute(),
	}}
	p := &mockPOIProvider{
		results: map[domain.POICategory][]domain.PointOfInterest{},
		block:   map[domain.POICategory]chan struct{}{},
	}
	h := &mockHistory{}
	return NewOrchestrator(g, r, p, h), g, r, p, h
}

func TestSubmitSearchHappyPath(t *testing.T) {
	o, _, _, _, h := newTestOrchestrator()
	ctx := context.Background()

	v, err := o.SubmitSearch(ctx, "Delhi", "Agra")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v.State != StateReady {
		t.Fatalf("state = %s, want ready", v.State)
	}
	if v.Route == nil || len(v.Route.Path) != 3 {
		t.Fatalf("route missing or wrong shape: %+v", v.Route)
	}
	if v.Route.Path[0] != delhi.Coordinate || v.Route.Path[2] != agra.Coordinate {
		t.Errorf("path endpoints do not match resolved coordinates")
	}

	if v.DistanceDisplay != "233.50 km" {
		t.Errorf("distance display = %q, want 233.50 km", v.DistanceDisplay)
	}
	if v.DurationDisplay != "180.00 mins" {
		t.Errorf("duration display = %q, want 180.00 mins", v.DurationDisplay)
	}

	if v.Region == nil {
		t.Fatal("bounding region not derived")
	}
	if v.Region.South != 0 || v.Region.North != 1 || v.Region.West != 77.209 || v.Region.East != 78.008 {
		t.Errorf("region = %+v", v.Region)
	}

	entries, _ := h.List(ctx)
	if len(entries) != 1 {
		t.Fatalf("history length = %d, want 1", len(entries))
	}
	if entries[0].StartQuery != "Delhi" || entries[0].DestQuery != "Agra" {
		t.Errorf("history entry = %+v", entries[0])
	}
}

func TestSubmitSearchEmptyInput(t *testing.T) {
	o, g, r, _, h := newTestOrchestrator()
	ctx := context.Background()

	v, err := o.SubmitSearch(ctx, "", "Agra")
	if !errors.Is(err, domain.ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
	if v.State != StateFailed {
		t.Errorf("state = %s, want failed", v.State)
	}
	if v.LastFailure == nil || v.LastFailure.Stage != StageStart {
		t.Errorf("failure = %+v, want start stage", v.LastFailure)
	}

	if g.callCount() != 0 {
		t.Error("no geocode call may be made for empty input")
	}
	if r.calls != 0 {
		t.Error("no route call may be made for empty input")
	}
	entries, _ := h.List(ctx)
	if len(entries) != 0 {
		t.Error("history must not change")
	}
}

func TestSubmitSearchNotFoundKeepsPriorRoute(t *testing.T) {
	o, _, r, _, h := newTestOrchestrator()
	ctx := context.Background()

	if _, err := o.SubmitSearch(ctx, "Delhi", "Agra"); err != nil {
		t.Fatalf("seed search: %v", err)
	}
	callsAfterSeed := r.calls

	v, err := o.SubmitSearch(ctx, "Zzznotaplace123", "Agra")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if v.State != StateFailed {
		t.Errorf("state = %s, want failed", v.State)
	}
	if v.LastFailure == nil || v.LastFailure.Stage != StageStart {
		t.Errorf("failure = %+v, want offending side start", v.LastFailure)
	}

	if r.calls != callsAfterSeed {
		t.Error("route fetch must not be invoked after a geocode failure")
	}
	if v.Route == nil || v.DistanceDisplay != "233.50 km" {
		t.Error("prior displayed route must remain unchanged")
	}

	entries, _ := h.List(ctx)
	if len(entries) != 1 {
		t.Errorf("history length = %d, want 1", len(entries))
	}
}

func TestSubmitSearchNoRouteFound(t *testing.T) {
	o, _, r, _, h := newTestOrchestrator()
	r.mu.Lock()
	r.err = domain.ErrNoRouteFound
	r.mu.Unlock()

	v, err := o.SubmitSearch(context.Background(), "Delhi", "Agra")
	if !errors.Is(err, domain.ErrNoRouteFound) {
		t.Fatalf("err = %v, want ErrNoRouteFound", err)
	}
	if v.State != StateFailed {
		t.Errorf("state = %s, want failed", v.State)
	}
	if v.LastFailure == nil || v.LastFailure.Stage != StageRouting {
		t.Errorf("failure = %+v, want routing stage", v.LastFailure)
	}

	entries, _ := h.List(context.Background())
	if len(entries) != 0 {
		t.Error("no history on routing failure")
	}
}

func TestSelectCategoryRaceLastWriterWins(t *testing.T) {
	o, _, _, p, _ := newTestOrchestrator()
	ctx := context.Background()

	if _, err := o.SubmitSearch(ctx, "Delhi", "Agra"); err != nil {
		t.Fatalf("seed search: %v", err)
	}

	hospital := []domain.PointOfInterest{{ID: "node/1", Name: "City Hospital", Category: domain.CategoryHospital}}
	atms := []domain.PointOfInterest{{ID: "node/2", Name: "Corner ATM", Category: domain.CategoryATM}}

	gate := make(chan struct{})
	inFlight := make(chan struct{})
	p.mu.Lock()
	p.results[domain.CategoryHospital] = hospital
	p.results[domain.CategoryATM] = atms
	p.block[domain.CategoryHospital] = gate
	p.started = map[domain.POICategory]chan struct{}{domain.CategoryHospital: inFlight}
	p.mu.Unlock()

	done := make(chan View)
	go func() {
		v, _ := o.SelectCategory(ctx, domain.CategoryHospital)
		done <- v
	}()
	<-inFlight

	// B lands while A's fetch is still in flight.
	vb, err := o.SelectCategory(ctx, domain.CategoryATM)
	if err != nil {
		t.Fatalf("select atm: %v", err)
	}
	if len(vb.POIs) != 1 || vb.POIs[0].Name != "Corner ATM" {
		t.Fatalf("atm pois not applied: %+v", vb.POIs)
	}

	// A completes after B: its response must be discarded.
	close(gate)
	<-done

	final := o.Snapshot()
	if final.ActiveCategory != domain.CategoryATM {
		t.Errorf("active category = %s, want atm", final.ActiveCategory)
	}
	if len(final.POIs) != 1 || final.POIs[0].Name != "Corner ATM" {
		t.Errorf("stale hospital response displayed: %+v", final.POIs)
	}
}

func TestSelectCategoryFailureLeavesRouteState(t *testing.T) {
	o, _, _, p, _ := newTestOrchestrator()
	ctx := context.Background()

	if _, err := o.SubmitSearch(ctx, "Delhi", "Agra"); err != nil {
		t.Fatalf("seed search: %v", err)
	}

	p.mu.Lock()
	p.err = domain.ErrLookupFailed
	p.mu.Unlock()

	v, err := o.SelectCategory(ctx, domain.CategoryHospital)
	if !errors.Is(err, domain.ErrLookupFailed) {
		t.Fatalf("err = %v, want ErrLookupFailed", err)
	}
	if v.State != StateReady || v.Route == nil {
		t.Error("poi failure must not affect route state")
	}
	if v.LastFailure == nil || v.LastFailure.Stage != StagePOI {
		t.Errorf("failure = %+v, want poi stage", v.LastFailure)
	}
}

func TestSelectCategoryRequiresRoute(t *testing.T) {
	o, _, _, _, _ := newTestOrchestrator()

	if _, err := o.SelectCategory(context.Background(), domain.CategoryHospital); err == nil {
		t.Fatal("expected error without an active route")
	}
}

func TestClearCategory(t *testing.T) {
	o, _, _, p, _ := newTestOrchestrator()
	ctx := context.Background()

	o.SubmitSearch(ctx, "Delhi", "Agra")
	p.mu.Lock()
	p.results[domain.CategoryHospital] = []domain.PointOfInterest{{ID: "node/1"}}
	p.mu.Unlock()
	o.SelectCategory(ctx, domain.CategoryHospital)

	v := o.ClearCategory()
	if v.ActiveCategory != "" || len(v.POIs) != 0 {
		t.Errorf("category/pois not cleared: %s %d", v.ActiveCategory, len(v.POIs))
	}
	if v.State != StateReady || v.Route == nil {
		t.Error("clearing category must not touch the route")
	}
}

func TestSubmitSearchClearsPOIsAtSubmission(t *testing.T) {
	o, _, _, p, _ := newTestOrchestrator()
	ctx := context.Background()

	o.SubmitSearch(ctx, "Delhi", "Agra")
	p.mu.Lock()
	p.results[domain.CategoryHospital] = []domain.PointOfInterest{{ID: "node/1"}}
	p.mu.Unlock()
	o.SelectCategory(ctx, domain.CategoryHospital)

	v, err := o.SubmitSearch(ctx, "Delhi", "Agra")
	if err != nil {
		t.Fatalf("second search: %v", err)
	}
	if v.ActiveCategory != "" || len(v.POIs) != 0 {
		t.Error("submission must invalidate the POI set and active category")
	}
}

func TestNewerSearchSupersedesInFlight(t *testing.T) {
	o, g, r, _, _ := newTestOrchestrator()
	ctx := context.Background()

	// First search parks inside the routing phase.
	gate := make(chan struct{})
	r.mu.Lock()
	r.block = gate
	r.mu.Unlock()

	done := make(chan View)
	go func() {
		v, _ := o.SubmitSearch(ctx, "Delhi", "Agra")
		done <- v
	}()

	// Wait until the first search has issued its route fetch.
	for {
		r.mu.Lock()
		calls := r.calls
		r.mu.Unlock()
		if calls == 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	// Second search completes while the first is still in flight.
	g.mu.Lock()
	g.places["Pune"] = domain.ResolvedPlace{Query: "Pune", Coordinate: domain.Coordinate{Lat: 2, Lon: 73.8}}
	g.places["Goa"] = domain.ResolvedPlace{Query: "Goa", Coordinate: domain.Coordinate{Lat: 3, Lon: 74.1}}
	g.mu.Unlock()
	r.mu.Lock()
	r.block = nil
	r.routes[routeKey(domain.Coordinate{Lat: 2, Lon: 73.8})] = domain.Route{
		Path:            []domain.Coordinate{{Lat: 2, Lon: 73.8}, {Lat: 3, Lon: 74.1}},
		DistanceMeters:  589000,
		DurationSeconds: 36000,
	}
	r.mu.Unlock()

	if _, err := o.SubmitSearch(ctx, "Pune", "Goa"); err != nil {
		t.Fatalf("second search: %v", err)
	}

	// First search completes late; its result must be dropped.
	close(gate)
	<-done

	final := o.Snapshot()
	if final.State != StateReady {
		t.Fatalf("state = %s, want ready", final.State)
	}
	if final.Start == nil || final.Start.Query != "Pune" {
		t.Errorf("superseded search overwrote the newer one: %+v", final.Start)
	}
	if final.DistanceDisplay != "589.00 km" {
		t.Errorf("distance display = %q", final.DistanceDisplay)
	}
}

func TestReplaySkipsGeocoding(t *testing.T) {
	o, g, _, _, h := newTestOrchestrator()
	ctx := context.Background()

	if _, err := o.SubmitSearch(ctx, "Delhi", "Agra"); err != nil {
		t.Fatalf("seed search: %v", err)
	}
	entries, _ := h.List(ctx)
	entryID := entries[0].ID
	geocodes := g.callCount()

	o.Reset()

	v, err := o.ReplaySearch(ctx, entryID)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if v.State != StateReady {
		t.Fatalf("state = %s, want ready", v.State)
	}
	if g.callCount() != geocodes {
		t.Error("replay must not geocode")
	}
	if v.DistanceDisplay != "233.50 km" {
		t.Errorf("distance display = %q", v.DistanceDisplay)
	}

	// Replay re-records; the pair deduplicates to a single entry.
	entries, _ = h.List(ctx)
	if len(entries) != 1 {
		t.Errorf("history length = %d, want 1", len(entries))
	}
	if entries[0].ID == entryID {
		t.Error("replay should have recorded a fresh entry at the front")
	}
}

func TestResetReturnsToIdle(t *testing.T) {
	o, _, _, _, _ := newTestOrchestrator()
	ctx := context.Background()

	o.SubmitSearch(ctx, "Delhi", "Agra")
	v := o.Reset()

	if v.State != StateIdle {
		t.Errorf("state = %s, want idle", v.State)
	}
	if v.Route != nil || v.Region != nil || v.DistanceDisplay != "" || len(v.POIs) != 0 {
		t.Error("reset must drop all derived state")
	}
}
