package ttlindex

import "container/list"

// Policy defines the eviction policy applied when the index is over capacity.
type Policy int

const (
	// LRU evicts the least recently used entry.
	LRU Policy = iota
	// LFU evicts the least frequently used entry.
	LFU
	// FIFO evicts the oldest entry.
	FIFO
)

func (p Policy) String() string {
	switch p {
	case LFU:
		return "lfu"
	case FIFO:
		return "fifo"
	default:
		return "lru"
	}
}

// evictor manages eviction order for index entries.
type evictor[K comparable] interface {
	onAccess(key K)
	onInsert(key K)
	// evict removes and returns the next victim other than keep.
	evict(keep K) (K, bool)
	remove(key K)
}

var (
	_ evictor[string] = (*listEvictor[string])(nil)
	_ evictor[string] = (*lfuEvictor[string])(nil)
)

// listEvictor keeps keys in a doubly-linked list, newest at the front.
// With promote set it behaves as LRU, otherwise as FIFO.
type listEvictor[K comparable] struct {
	promote bool
	order   *list.List
	items   map[K]*list.Element
}

func newListEvictor[K comparable](promote bool) *listEvictor[K] {
	return &listEvictor[K]{
		promote: promote,
		order:   list.New(),
		items:   make(map[K]*list.Element),
	}
}

func (e *listEvictor[K]) onAccess(key K) {
	if !e.promote {
		return
	}
	if elem, ok := e.items[key]; ok {
		e.order.MoveToFront(elem)
	}
}

func (e *listEvictor[K]) onInsert(key K) {
	if _, ok := e.items[key]; ok {
		e.onAccess(key)
		return
	}
	e.items[key] = e.order.PushFront(key)
}

func (e *listEvictor[K]) evict(keep K) (K, bool) {
	elem := e.order.Back()
	if elem != nil && elem.Value.(K) == keep {
		elem = elem.Prev()
	}
	if elem == nil {
		var zero K
		return zero, false
	}
	key := elem.Value.(K)
	e.order.Remove(elem)
	delete(e.items, key)
	return key, true
}

func (e *listEvictor[K]) remove(key K) {
	if elem, ok := e.items[key]; ok {
		e.order.Remove(elem)
		delete(e.items, key)
	}
}

// lfuEvictor keeps one list per access frequency and evicts from the lowest.
type lfuEvictor[K comparable] struct {
	buckets map[int64]*list.List
	items   map[K]*list.Element
	freq    map[K]int64
	minFreq int64
}

func newLFUEvictor[K comparable]() *lfuEvictor[K] {
	return &lfuEvictor[K]{
		buckets: make(map[int64]*list.List),
		items:   make(map[K]*list.Element),
		freq:    make(map[K]int64),
	}
}

func (e *lfuEvictor[K]) push(key K, f int64) {
	b := e.buckets[f]
	if b == nil {
		b = list.New()
		e.buckets[f] = b
	}
	e.items[key] = b.PushFront(key)
	e.freq[key] = f
}

// unlink detaches key from its bucket and reports its frequency.
func (e *lfuEvictor[K]) unlink(key K) (int64, bool) {
	f, ok := e.freq[key]
	if !ok {
		return 0, false
	}
	b := e.buckets[f]
	b.Remove(e.items[key])
	if b.Len() == 0 {
		delete(e.buckets, f)
	}
	delete(e.items, key)
	delete(e.freq, key)
	return f, true
}

func (e *lfuEvictor[K]) onAccess(key K) {
	f, ok := e.unlink(key)
	if !ok {
		return
	}
	if f == e.minFreq && e.buckets[f] == nil {
		e.minFreq++
	}
	e.push(key, f+1)
}

func (e *lfuEvictor[K]) onInsert(key K) {
	if _, ok := e.freq[key]; ok {
		e.onAccess(key)
		return
	}
	e.push(key, 1)
	e.minFreq = 1
}

func (e *lfuEvictor[K]) evict(keep K) (K, bool) {
	var zero K
	if len(e.freq) == 0 {
		return zero, false
	}
	if e.buckets[e.minFreq] == nil {
		// minFreq can go stale after remove; rescan for the lowest bucket.
		e.minFreq = e.lowestAbove(0)
	}

	for f := e.minFreq; f != 0; f = e.lowestAbove(f) {
		elem := e.buckets[f].Back()
		if elem.Value.(K) == keep {
			elem = elem.Prev()
		}
		if elem == nil {
			continue
		}
		key := elem.Value.(K)
		e.unlink(key)
		return key, true
	}
	return zero, false
}

// lowestAbove returns the lowest populated frequency greater than f, or 0.
func (e *lfuEvictor[K]) lowestAbove(f int64) int64 {
	var lo int64
	for g := range e.buckets {
		if g > f && (lo == 0 || g < lo) {
			lo = g
		}
	}
	return lo
}

func (e *lfuEvictor[K]) remove(key K) {
	e.unlink(key)
}

func newEvictor[K comparable](p Policy) evictor[K] {
	switch p {
	case LFU:
		return newLFUEvictor[K]()
	case FIFO:
		return newListEvictor[K](false)
	default:
		return newListEvictor[K](true)
	}
}
