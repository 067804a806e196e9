package urlutil

// Index is an insertion-ordered set of canonical keys.
// The zero value is not usable; construct with NewIndex.
// Index is not safe for concurrent use.
type Index struct {
	keys  map[string]struct{}
	order []string
	limit int
}

// NewIndex creates an Index holding at most limit keys. A limit <= 0 means unbounded.
func NewIndex(limit int) *Index {
	return &Index{
		keys:  make(map[string]struct{}),
		limit: limit,
	}
}

// Admit records the canonical key of raw and returns true when the key was not
// present yet and the index still had room for it.
func (i *Index) Admit(raw string) bool {
	key := CanonicalKey(raw)
	if _, seen := i.keys[key]; seen {
		return false
	}
	if i.Full() {
		return false
	}
	i.keys[key] = struct{}{}
	i.order = append(i.order, raw)
	return true
}

// Contains reports whether the canonical key of raw was admitted.
func (i *Index) Contains(raw string) bool {
	_, ok := i.keys[CanonicalKey(raw)]
	return ok
}

// Full reports whether the index reached its limit.
func (i *Index) Full() bool {
	return i.limit > 0 && len(i.order) >= i.limit
}

func (i *Index) Size() int {
	return len(i.order)
}

// URLs returns the admitted URLs, as originally spelled, in admission order.
func (i *Index) URLs() []string {
	out := make([]string, len(i.order))
	copy(out, i.order)
	return out
}

// RemoveDuplicates returns urls with every entry whose canonical key was already
// emitted dropped. First-seen order is preserved and the operation is idempotent.
func RemoveDuplicates(urls []string) []string {
	index := NewIndex(0)
	for _, u := range urls {
		index.Admit(u)
	}
	return index.URLs()
}
