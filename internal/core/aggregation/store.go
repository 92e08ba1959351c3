package aggregation

import "sort"

// Key identifies one aggregation bucket. Components are compared as-is,
// case-sensitive and without normalization.
type Key struct {
	Network string
	Product string
	Month   string
}

// Bucket holds the running statistics for one Key.
type Bucket struct {
	Count int64
	Total int64
}

// Entry is a Key paired with its Bucket, used for ordered snapshots.
type Entry struct {
	Key
	Bucket
}

// Store is the grouped-statistics map for one ingestion run.
// It has no internal locking: callers serialize Accumulate against
// everything else. Concurrent reads are safe on their own.
type Store struct {
	buckets map[Key]*Bucket
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{buckets: make(map[Key]*Bucket)}
}

// add creates the bucket for k on first sight, then folds in one record.
func (s *Store) add(k Key, amount int64) {
	b, ok := s.buckets[k]
	if !ok {
		b = &Bucket{}
		s.buckets[k] = b
	}
	b.Count++
	b.Total += amount
}

// Lookup returns the bucket for k without creating it.
func (s *Store) Lookup(k Key) (Bucket, bool) {
	b, ok := s.buckets[k]
	if !ok {
		return Bucket{}, false
	}
	return *b, true
}

// Count returns the number of records seen for the key, or 0.
func (s *Store) Count(network, product, month string) int64 {
	b, _ := s.Lookup(Key{Network: network, Product: product, Month: month})
	return b.Count
}

// Total returns the summed whole-unit amount for the key, or 0.
func (s *Store) Total(network, product, month string) int64 {
	b, _ := s.Lookup(Key{Network: network, Product: product, Month: month})
	return b.Total
}

// Len returns the number of buckets.
func (s *Store) Len() int {
	return len(s.buckets)
}

// Entries returns a copy of every bucket ordered by network, product, month.
func (s *Store) Entries() []Entry {
	out := make([]Entry, 0, len(s.buckets))
	for k, b := range s.buckets {
		out = append(out, Entry{Key: k, Bucket: *b})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Key, out[j].Key
		if a.Network != b.Network {
			return a.Network < b.Network
		}
		if a.Product != b.Product {
			return a.Product < b.Product
		}
		return a.Month < b.Month
	})
	return out
}
