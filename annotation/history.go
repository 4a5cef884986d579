package annotation

import "container/list"

// history is a capacity-bounded, insertion-ordered set of cache keys.
// Touching a key that is already present moves it to the most-recent
// position instead of duplicating it; at capacity the oldest key is
// evicted. Front of the list is oldest, back is most recent.
type history struct {
	capacity int
	order    *list.List
	index    map[string]*list.Element
}

func newHistory(capacity int) *history {
	return &history{
		capacity: capacity,
		order:    list.New(),
		index:    make(map[string]*list.Element),
	}
}

// touch records key as the most recently used entry.
func (h *history) touch(key string) {
	if h.capacity <= 0 {
		return
	}
	if el, ok := h.index[key]; ok {
		h.order.MoveToBack(el)
		return
	}
	if h.order.Len() >= h.capacity {
		oldest := h.order.Front()
		h.order.Remove(oldest)
		delete(h.index, oldest.Value.(string))
	}
	h.index[key] = h.order.PushBack(key)
}

// keys returns up to limit keys, most recent first. A non-positive limit
// means the full capacity.
func (h *history) keys(limit int) []string {
	if limit <= 0 || limit > h.capacity {
		limit = h.capacity
	}
	out := make([]string, 0, limit)
	for el := h.order.Back(); el != nil && len(out) < limit; el = el.Prev() {
		out = append(out, el.Value.(string))
	}
	return out
}

func (h *history) len() int {
	return h.order.Len()
}
