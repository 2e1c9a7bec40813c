package extensions

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/nodearea"
)

// SelectorEntity is one selected thing. Unselect and Translate may be nil.
type SelectorEntity struct {
	Label     string
	ID        string
	Unselect  func(ctx context.Context) error
	Translate func(ctx context.Context, dx, dy float64) error
}

func entityKey(label, id string) string {
	return label + "_" + id
}

// Selector collects selected entities and moves them together with the
// picked one.
type Selector struct {
	mu       sync.Mutex
	entities map[string]SelectorEntity
	pickKey  string
}

// NewSelector creates an empty selector.
func NewSelector() *Selector {
	return &Selector{entities: make(map[string]SelectorEntity)}
}

// IsSelected reports whether the entity is selected.
func (s *Selector) IsSelected(label, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entities[entityKey(label, id)]
	return ok
}

// Add selects e. Unless accumulate is set, everything else is unselected
// first.
func (s *Selector) Add(ctx context.Context, e SelectorEntity, accumulate bool) error {
	if !accumulate {
		if err := s.UnselectAll(ctx); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.entities[entityKey(e.Label, e.ID)] = e
	s.mu.Unlock()
	return nil
}

// Remove unselects one entity. Unknown entities are ignored.
func (s *Selector) Remove(ctx context.Context, label, id string) error {
	key := entityKey(label, id)
	s.mu.Lock()
	e, ok := s.entities[key]
	delete(s.entities, key)
	s.mu.Unlock()
	if !ok || e.Unselect == nil {
		return nil
	}
	return e.Unselect(ctx)
}

// UnselectAll unselects every entity and returns the joined errors of
// their Unselect callbacks.
func (s *Selector) UnselectAll(ctx context.Context) error {
	s.mu.Lock()
	all := s.entities
	s.entities = make(map[string]SelectorEntity)
	s.mu.Unlock()

	var errs []error
	for _, key := range sortedKeys(all) {
		if e := all[key]; e.Unselect != nil {
			errs = append(errs, e.Unselect(ctx))
		}
	}
	return errors.Join(errs...)
}

// Translate moves every selected entity except the picked one by (dx, dy).
func (s *Selector) Translate(ctx context.Context, dx, dy float64) error {
	s.mu.Lock()
	var targets []SelectorEntity
	for _, key := range sortedKeys(s.entities) {
		if key != s.pickKey {
			targets = append(targets, s.entities[key])
		}
	}
	s.mu.Unlock()

	var errs []error
	for _, e := range targets {
		if e.Translate != nil {
			errs = append(errs, e.Translate(ctx, dx, dy))
		}
	}
	return errors.Join(errs...)
}

// Pick marks the entity the user is dragging.
func (s *Selector) Pick(label, id string) {
	s.mu.Lock()
	s.pickKey = entityKey(label, id)
	s.mu.Unlock()
}

// Release clears the picked entity.
func (s *Selector) Release() {
	s.mu.Lock()
	s.pickKey = ""
	s.mu.Unlock()
}

// IsPicked reports whether the entity is the one being dragged.
func (s *Selector) IsPicked(label, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pickKey == entityKey(label, id)
}

// Len returns the number of selected entities.
func (s *Selector) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entities)
}

func sortedKeys(m map[string]SelectorEntity) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Accumulating decides whether a new pick adds to the selection.
type Accumulating interface {
	Active() bool
}

// AccumulateFunc adapts a function to Accumulating.
type AccumulateFunc func() bool

// Active calls f.
func (f AccumulateFunc) Active() bool { return f() }

// AccumulateOnCtrl accumulates while Control or Meta is held. It reads
// Ebitengine's key state and must be queried from the game loop.
func AccumulateOnCtrl() Accumulating {
	return AccumulateFunc(func() bool {
		return ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
	})
}

// Never accumulating: every pick replaces the selection.
var Never Accumulating = AccumulateFunc(func() bool { return false })

const nodeLabel = "node"

// unselectTwitch is the number of pointer moves below which a press and
// release on the background counts as a click that clears the selection.
const unselectTwitch = 4

// SelectableNodes selects nodes when picked, drags the whole selection
// together and clears it on a background click.
type SelectableNodes struct {
	plugin       *nodearea.Plugin
	selector     *Selector
	accumulating Accumulating

	mu       sync.Mutex
	twitch   *int
	selected map[string]bool
}

// NewSelectableNodes installs node selection on plugin. Renderers query
// Selected while handling render signals; selection changes re-render the
// affected node.
func NewSelectableNodes(plugin *nodearea.Plugin, selector *Selector, accumulating Accumulating) *SelectableNodes {
	if accumulating == nil {
		accumulating = Never
	}
	zero := 0
	sn := &SelectableNodes{
		plugin:       plugin,
		selector:     selector,
		accumulating: accumulating,
		twitch:       &zero,
		selected:     make(map[string]bool),
	}
	plugin.AddPipe(sn.pipe)
	return sn
}

// Selected reports whether node id is selected.
func (sn *SelectableNodes) Selected(id string) bool {
	sn.mu.Lock()
	defer sn.mu.Unlock()
	return sn.selected[id]
}

func (sn *SelectableNodes) setSelected(ctx context.Context, id string, on bool) error {
	sn.mu.Lock()
	changed := sn.selected[id] != on
	if on {
		sn.selected[id] = true
	} else {
		delete(sn.selected, id)
	}
	sn.mu.Unlock()
	if !changed {
		return nil
	}
	_, err := sn.plugin.Update(ctx, nodearea.RenderNode, id)
	return err
}

// Select adds node id to the selection. Unknown ids are ignored.
func (sn *SelectableNodes) Select(ctx context.Context, id string, accumulate bool) error {
	if _, ok := sn.plugin.NodeView(id); !ok {
		return nil
	}
	entity := SelectorEntity{
		Label: nodeLabel,
		ID:    id,
		Translate: func(ctx context.Context, dx, dy float64) error {
			view, ok := sn.plugin.NodeView(id)
			if !ok {
				return nil
			}
			pos := view.Position()
			_, err := view.Translate(ctx, pos.X+dx, pos.Y+dy)
			return err
		},
		Unselect: func(ctx context.Context) error {
			return sn.setSelected(ctx, id, false)
		},
	}
	if err := sn.selector.Add(ctx, entity, accumulate); err != nil {
		return err
	}
	return sn.setSelected(ctx, id, true)
}

// Unselect removes node id from the selection.
func (sn *SelectableNodes) Unselect(ctx context.Context, id string) error {
	return sn.selector.Remove(ctx, nodeLabel, id)
}

func (sn *SelectableNodes) pipe(ctx context.Context, s nodearea.Signal) (nodearea.Signal, error) {
	var err error
	switch sig := s.(type) {
	case nodearea.NodePickedSignal:
		accumulate := sn.accumulating.Active()
		sn.selector.Pick(nodeLabel, sig.ID)
		sn.mu.Lock()
		sn.twitch = nil
		sn.mu.Unlock()
		err = sn.Select(ctx, sig.ID, accumulate)
	case nodearea.NodeTranslatedSignal:
		if sn.selector.IsPicked(nodeLabel, sig.ID) {
			err = sn.selector.Translate(ctx, sig.Position.X-sig.Previous.X, sig.Position.Y-sig.Previous.Y)
		}
	case nodearea.PointerDownSignal:
		sn.mu.Lock()
		zero := 0
		sn.twitch = &zero
		sn.mu.Unlock()
	case nodearea.PointerMoveSignal:
		sn.mu.Lock()
		if sn.twitch != nil {
			*sn.twitch++
		}
		sn.mu.Unlock()
	case nodearea.PointerUpSignal:
		sn.mu.Lock()
		click := sn.twitch != nil && *sn.twitch < unselectTwitch
		sn.twitch = nil
		sn.mu.Unlock()
		if click {
			err = sn.selector.UnselectAll(ctx)
		}
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
