package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"map-route-service/internal/domain"
	"map-route-service/internal/platform/obs"
	"map-route-service/internal/ports"
)

// State of the route search lifecycle.
type State string

const (
	StateIdle     State = "idle"
	StateLocating State = "locating"
	StateRouting  State = "routing"
	StateReady    State = "ready"
	StateFailed   State = "failed"
)

// Stage names used when a failure is surfaced to the user.
const (
	StageStart       = "start"
	StageDestination = "destination"
	StageRouting     = "routing"
	StagePOI         = "poi"
)

// ErrUnknownHistoryEntry means a replay referenced an entry that is no
// longer in the history.
var ErrUnknownHistoryEntry = errors.New("unknown history entry")

// ErrNoActiveRoute means a POI operation arrived with no route to
// scope the search to.
var ErrNoActiveRoute = errors.New("no active route")

// Failure identifies which stage failed and why.
type Failure struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// View is an immutable snapshot of the orchestrator's derived state.
type View struct {
	State           State
	Start           *domain.ResolvedPlace
	Dest            *domain.ResolvedPlace
	Route           *domain.Route
	Region          *domain.BoundingRegion
	DistanceDisplay string
	DurationDisplay string
	ActiveCategory  domain.POICategory
	POIs            []domain.PointOfInterest
	LastFailure     *Failure
}

// Orchestrator coordinates the geocoder, route provider, POI provider
// and history store in response to user intent, and exclusively owns
// all derived view state. Every asynchronous step is tagged with the
// generation current at submission; completions from superseded
// generations are silently discarded.
type Orchestrator struct {
	geocoder ports.Geocoder
	routes   ports.RouteProvider
	pois     ports.POIProvider
	history  ports.HistoryStore

	mu         sync.Mutex
	state      State
	generation uint64

	start  *domain.ResolvedPlace
	dest   *domain.ResolvedPlace
	route  *domain.Route
	region *domain.BoundingRegion

	distanceDisplay string
	durationDisplay string

	activeCategory domain.POICategory
	poiList        []domain.PointOfInterest

	lastFailure *Failure
}

func NewOrchestrator(
	geocoder ports.Geocoder,
	routes ports.RouteProvider,
	pois ports.POIProvider,
	history ports.HistoryStore,
) *Orchestrator {
	return &Orchestrator{
		geocoder: geocoder,
		routes:   routes,
		pois:     pois,
		history:  history,
		state:    StateIdle,
	}
}

// Snapshot returns a copy of the current view state.
func (o *Orchestrator) Snapshot() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

func (o *Orchestrator) snapshotLocked() View {
	v := View{
		State:           o.state,
		DistanceDisplay: o.distanceDisplay,
		DurationDisplay: o.durationDisplay,
		ActiveCategory:  o.activeCategory,
	}
	if o.start != nil {
		s := *o.start
		v.Start = &s
	}
	if o.dest != nil {
		d := *o.dest
		v.Dest = &d
	}
	if o.route != nil {
		r := *o.route
		r.Path = append([]domain.Coordinate(nil), o.route.Path...)
		v.Route = &r
	}
	if o.region != nil {
		reg := *o.region
		v.Region = &reg
	}
	if o.poiList != nil {
		v.POIs = append([]domain.PointOfInterest(nil), o.poiList...)
	}
	if o.lastFailure != nil {
		f := *o.lastFailure
		v.LastFailure = &f
	}
	return v
}

// SubmitSearch drives one full search: both endpoints geocoded
// concurrently, then the route fetched, then history recorded. A newer
// submission supersedes this one at whichever step it is in; the stale
// result is dropped without touching state.
//
// Submission invalidates the POI set and active category immediately.
// The previously displayed route stays visible until the new route
// replaces it; a failure reports its stage and leaves it untouched.
func (o *Orchestrator) SubmitSearch(ctx context.Context, startQuery, destQuery string) (_ View, err error) {
	defer obs.Time(ctx, "orchestrator.SubmitSearch")(&err)

	o.mu.Lock()
	o.generation++
	gen := o.generation
	o.beginSearchLocked()

	// Blank sides are rejected before any network call is made.
	if stage, blankErr := blankSide(startQuery, destQuery); blankErr != nil {
		o.failLocked(stage, blankErr)
		v := o.snapshotLocked()
		o.mu.Unlock()
		return v, blankErr
	}

	o.state = StateLocating
	o.mu.Unlock()

	start, dest, stage, err := o.locate(ctx, startQuery, destQuery)
	if err != nil {
		return o.applyFailure(gen, stage, err)
	}

	return o.routeAndRecord(ctx, gen, start, dest)
}

// ReplaySearch re-drives a past search from its stored coordinates,
// skipping geocoding. The flow from routing onward is identical to a
// normal search, including the (deduplicated) history record.
func (o *Orchestrator) ReplaySearch(ctx context.Context, entryID int64) (_ View, err error) {
	defer obs.Time(ctx, "orchestrator.ReplaySearch")(&err)

	entry, err := o.history.Replay(ctx, entryID)
	if err != nil {
		return o.Snapshot(), fmt.Errorf("%w: %d", ErrUnknownHistoryEntry, entryID)
	}

	o.mu.Lock()
	o.generation++
	gen := o.generation
	o.beginSearchLocked()
	o.state = StateRouting
	o.mu.Unlock()

	start := &domain.ResolvedPlace{Query: entry.StartQuery, Coordinate: entry.StartCoordinate}
	dest := &domain.ResolvedPlace{Query: entry.DestQuery, Coordinate: entry.DestCoordinate}

	return o.routeAndRecord(ctx, gen, start, dest)
}

// SelectCategory fetches POIs for the category scoped to the current
// route's bounding region. While the fetch is in flight the previous
// POI set stays visible; completion replaces it atomically, and only
// if the category is still the active one (last writer wins by
// category).
func (o *Orchestrator) SelectCategory(ctx context.Context, category domain.POICategory) (_ View, err error) {
	defer obs.Time(ctx, "orchestrator.SelectCategory")(&err)

	o.mu.Lock()
	if o.state != StateReady || o.region == nil {
		o.mu.Unlock()
		return o.Snapshot(), ErrNoActiveRoute
	}
	o.activeCategory = category
	gen := o.generation
	region := *o.region
	o.mu.Unlock()

	pois, err := o.pois.FetchPOIs(ctx, region, category)

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.generation != gen || o.activeCategory != category {
		// Superseded mid-flight: stale response, dropped silently.
		return o.snapshotLocked(), nil
	}

	if err != nil {
		// POI failures are reported but never affect route state.
		o.lastFailure = &Failure{Stage: StagePOI, Message: err.Error()}
		return o.snapshotLocked(), err
	}

	o.poiList = pois
	o.lastFailure = nil
	return o.snapshotLocked(), nil
}

// ClearCategory clears the active category and POI list.
func (o *Orchestrator) ClearCategory() View {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.activeCategory = ""
	o.poiList = nil
	return o.snapshotLocked()
}

// Reset returns to Idle from any state, dropping all derived state and
// invalidating anything in flight.
func (o *Orchestrator) Reset() View {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.generation++
	o.state = StateIdle
	o.start = nil
	o.dest = nil
	o.route = nil
	o.region = nil
	o.distanceDisplay = ""
	o.durationDisplay = ""
	o.activeCategory = ""
	o.poiList = nil
	o.lastFailure = nil
	return o.snapshotLocked()
}

// beginSearchLocked applies the invalidation that fires at submission:
// the POI set and active category are scoped to the route being
// superseded and cannot outlive it.
func (o *Orchestrator) beginSearchLocked() {
	o.activeCategory = ""
	o.poiList = nil
	o.lastFailure = nil
}

func blankSide(startQuery, destQuery string) (string, error) {
	if strings.TrimSpace(startQuery) == "" {
		return StageStart, fmt.Errorf("%w: start", domain.ErrEmptyInput)
	}
	if strings.TrimSpace(destQuery) == "" {
		return StageDestination, fmt.Errorf("%w: destination", domain.ErrEmptyInput)
	}
	return "", nil
}

// locate resolves both endpoints concurrently and joins: both lookups
// settle, success or failure, before the result is inspected.
func (o *Orchestrator) locate(ctx context.Context, startQuery, destQuery string) (start, dest *domain.ResolvedPlace, stage string, err error) {
	var wg sync.WaitGroup
	var startPlace, destPlace domain.ResolvedPlace
	var startErr, destErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		startPlace, startErr = o.geocoder.Resolve(ctx, startQuery)
	}()
	go func() {
		defer wg.Done()
		destPlace, destErr = o.geocoder.Resolve(ctx, destQuery)
	}()
	wg.Wait()

	if startErr != nil {
		return nil, nil, StageStart, startErr
	}
	if destErr != nil {
		return nil, nil, StageDestination, destErr
	}
	return &startPlace, &destPlace, "", nil
}

// routeAndRecord runs the routing phase for gen and, on success,
// records the search in history.
func (o *Orchestrator) routeAndRecord(ctx context.Context, gen uint64, start, dest *domain.ResolvedPlace) (View, error) {
	o.mu.Lock()
	if o.generation != gen {
		v := o.snapshotLocked()
		o.mu.Unlock()
		return v, nil
	}
	o.state = StateRouting
	o.mu.Unlock()

	route, err := o.routes.FetchRoute(ctx, start.Coordinate, dest.Coordinate)
	if err != nil {
		return o.applyFailure(gen, StageRouting, err)
	}

	region, ok := domain.RegionFromPoints(route.Path...)
	if !ok {
		region, _ = domain.RegionFromPoints(start.Coordinate, dest.Coordinate)
	}

	o.mu.Lock()
	if o.generation != gen {
		v := o.snapshotLocked()
		o.mu.Unlock()
		return v, nil
	}

	o.state = StateReady
	o.start = start
	o.dest = dest
	o.route = &route
	o.region = &region
	o.distanceDisplay = fmt.Sprintf("%.2f km", route.DistanceMeters/1000)
	o.durationDisplay = fmt.Sprintf("%.2f mins", route.DurationSeconds/60)
	o.lastFailure = nil
	v := o.snapshotLocked()
	o.mu.Unlock()

	// Route resolution succeeded; history is recorded after, never
	// before, the route fetch completes.
	if _, err := o.history.Record(ctx, ports.HistoryCandidate{
		StartQuery:      start.Query,
		DestQuery:       dest.Query,
		StartCoordinate: start.Coordinate,
		DestCoordinate:  dest.Coordinate,
	}); err != nil {
		if errors.Is(err, domain.ErrPersistenceDegraded) {
			log.Printf("history degraded: %v", err)
		} else {
			log.Printf("history record failed: %v", err)
		}
	}

	return v, nil
}

// applyFailure records a failure for gen unless a newer search has
// superseded it. The previously displayed route, if any, is left
// untouched.
func (o *Orchestrator) applyFailure(gen uint64, stage string, err error) (View, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.generation != gen {
		return o.snapshotLocked(), nil
	}

	o.failLocked(stage, err)
	return o.snapshotLocked(), err
}

func (o *Orchestrator) failLocked(stage string, err error) {
	o.state = StateFailed
	o.lastFailure = &Failure{Stage: stage, Message: err.Error()}
}
