package runtime

import (
	"realtime-lab/contract"
	"realtime-lab/domain"
)

// Router resolves a logical target to the concrete set of connections to
// emit to. It is a pure function over registry state at call time, no
// caching: membership can change between calls.
type Router struct {
	registry contract.IRegistry
}

func NewRouter(registry contract.IRegistry) *Router {
	return &Router{registry: registry}
}

// Resolve returns the deduplicated union of the member sets of every
// room the target carries. Never fails; an empty set means "nobody
// currently listening".
func (r *Router) Resolve(target domain.Target) []domain.ConnectionID {
	if target.Class() == domain.ClassGlobal {
		return r.registry.Connections()
	}

	seen := make(map[domain.ConnectionID]struct{})
	var result []domain.ConnectionID
	for _, room := range target.Rooms() {
		for _, id := range r.registry.MembersOf(room) {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			result = append(result, id)
		}
	}
	return result
}
