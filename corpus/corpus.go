// Package corpus accumulates classified test inputs and persists them in one
// of two interchangeable on-disk encodings.
package corpus

// Buckets holds the output of a single driver run: the stringified
// candidates per verdict class, in acceptance order. Undefined results are
// only counted; they are never persisted.
type Buckets struct {
	Passing   []string
	Failing   []string
	Undefined int
}

// Contains reports whether the stringified candidate is already present in
// either bucket.
func (b *Buckets) Contains(input string) bool {
	for _, have := range b.Passing {
		if have == input {
			return true
		}
	}
	for _, have := range b.Failing {
		if have == input {
			return true
		}
	}
	return false
}

// Dedup collapses both buckets to their unique inputs. Order is not
// preserved afterward; callers that need positional stability must not
// deduplicate.
func (b *Buckets) Dedup() {
	b.Passing = uniqueStrings(b.Passing)
	b.Failing = uniqueStrings(b.Failing)
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Store is the long-lived corpus shared across driver runs. A single driver
// instance owns the store between invocations; the store is the only writer
// during persistence.
type Store struct {
	passing []string
	failing []string
}

// NewStore creates an empty corpus store.
func NewStore() *Store { return &Store{} }

// Extend appends one run's buckets to the corpus. Existing entries are kept;
// deduplication is the driver's policy decision, not the store's.
func (s *Store) Extend(b Buckets) {
	s.passing = append(s.passing, b.Passing...)
	s.failing = append(s.failing, b.Failing...)
}

// Replace swaps the corpus content for the given buckets.
func (s *Store) Replace(b Buckets) {
	s.passing = append([]string(nil), b.Passing...)
	s.failing = append([]string(nil), b.Failing...)
}

// Passing returns a copy of the passing inputs in corpus order.
func (s *Store) Passing() []string {
	return append([]string(nil), s.passing...)
}

// Failing returns a copy of the failing inputs in corpus order.
func (s *Store) Failing() []string {
	return append([]string(nil), s.failing...)
}

// Len returns the total number of stored inputs.
func (s *Store) Len() int { return len(s.passing) + len(s.failing) }
