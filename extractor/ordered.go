package extractor

// orderedSet is an insertion-ordered set of keys. Capped lists built from
// it truncate deterministically: the first N keys seen win.
type orderedSet struct {
	seen map[string]struct{}
	keys []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

// Add inserts key and reports whether it was new.
func (s *orderedSet) Add(key string) bool {
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	s.keys = append(s.keys, key)
	return true
}

func (s *orderedSet) Len() int { return len(s.keys) }

// Slice returns up to limit keys in insertion order. Never nil.
func (s *orderedSet) Slice(limit int) []string {
	n := len(s.keys)
	if limit >= 0 && n > limit {
		n = limit
	}
	out := make([]string, n)
	copy(out, s.keys)
	return out
}
