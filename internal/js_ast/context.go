package js_ast

// EffectsContext and IncludeContext are the "stacks of booleans, path-
// trackers, and sets of already-entered call sites" spec.md §4.2 calls for
// so traversal over cyclic object graphs and re-export chains terminates.
// A fresh context is created at a driver boundary (the inclusion fixpoint
// in graph's C5), threaded by reference through the traversal, and
// discarded at return — the only scoped-resource pattern this core has
// (spec.md §5).

// visitKey identifies one (entity, path) pair for the recursion guard.
// Keying on the entity's own identity (not a structural hash of the path)
// matches the implementer's note in spec.md §9: two different variables
// that happen to have been initialized with structurally identical object
// literals must not be confused with each other.
type visitKey struct {
	entity interface{}
	path   string
}

func joinPath(path []string) string {
	if len(path) == 0 {
		return ""
	}
	out := path[0]
	for _, p := range path[1:] {
		out += "\x00" + p
	}
	return out
}

// PathTracker is the recursion guard described in spec.md §9: a map keyed
// by (path-prefix, entity) that returns "already tracked" on re-entry so a
// cyclic object graph (e.g. `const a = {}; a.self = a`) can't loop forever.
type PathTracker struct {
	visited map[visitKey]bool
}

func NewPathTracker() *PathTracker {
	return &PathTracker{visited: make(map[visitKey]bool)}
}

// Enter returns true if (entity, path) has already been visited on this
// branch of the traversal. It must be called before recursing; on a true
// return the caller stops without recursing further. The effect queries on
// LocalVariable then report no effect, and literal probes report no known
// value.
func (t *PathTracker) Enter(entity interface{}, path []string) (alreadyVisited bool) {
	key := visitKey{entity: entity, path: joinPath(path)}
	if t.visited[key] {
		return true
	}
	t.visited[key] = true
	return false
}

// Fork makes a copy-on-write snapshot of the tracker for a branch of the
// traversal that shouldn't poison its sibling branches (spec.md §9: "the
// tracker should be copy-on-write across context forks").
func (t *PathTracker) Fork() *PathTracker {
	cp := make(map[visitKey]bool, len(t.visited))
	for k, v := range t.visited {
		cp[k] = v
	}
	return &PathTracker{visited: cp}
}

// EffectsContext carries the state a hasEffects query needs: whether we're
// currently inside a try block (which can make some otherwise-fatal effects
// non-observable at the statement level isn't modeled further than spec.md
// requires) and the path tracker for cyclic recursion.
type EffectsContext struct {
	InsideTry bool
	Paths     *PathTracker
}

func NewEffectsContext() *EffectsContext {
	return &EffectsContext{Paths: NewPathTracker()}
}

func (c *EffectsContext) Fork() *EffectsContext {
	return &EffectsContext{InsideTry: c.InsideTry, Paths: c.Paths.Fork()}
}

// IncludeContext wraps an EffectsContext (Include calls ShouldBeIncluded on
// children, which needs a fresh effects query) plus anything Include itself
// needs to track. Kept as a distinct type, even though today it is a thin
// wrapper, because spec.md §4.2 lists inclusion and effect contexts as
// related but separate stacks, and future node kinds (loops, switch
// fallthrough) will want inclusion-only state that shouldn't leak into
// hasEffects queries.
type IncludeContext struct {
	effects *EffectsContext
}

func NewIncludeContext() *IncludeContext {
	return &IncludeContext{effects: NewEffectsContext()}
}

func (c *IncludeContext) Effects() *EffectsContext {
	return c.effects
}
