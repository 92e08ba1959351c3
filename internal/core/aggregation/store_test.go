package aggregation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore_QueryMissingKeyDoesNotInsert(t *testing.T) {
	s := NewStore()
	s.add(Key{Network: "Network 1", Product: "Loan Product 1", Month: "Mar"}, 10)

	require.Equal(t, int64(0), s.Count("Network 2", "Loan Product 1", "Mar"))
	require.Equal(t, int64(0), s.Total("Network 1", "Loan Product 2", "Mar"))
	require.Equal(t, int64(0), s.Count("Network 1", "Loan Product 1", "Apr"))

	_, ok := s.Lookup(Key{Network: "Network 2"})
	require.False(t, ok)
	require.Equal(t, 1, s.Len())
	require.Len(t, s.Entries(), 1)
}

func TestStore_KeysAreCaseSensitive(t *testing.T) {
	s := NewStore()
	s.add(Key{Network: "Network 1", Product: "P", Month: "Mar"}, 1)
	s.add(Key{Network: "network 1", Product: "P", Month: "Mar"}, 1)

	require.Equal(t, 2, s.Len())
	require.Equal(t, int64(1), s.Count("Network 1", "P", "Mar"))
	require.Equal(t, int64(0), s.Count("Network 1", "P", "MAR"))
}

func TestStore_EntriesSorted(t *testing.T) {
	s := NewStore()
	s.add(Key{Network: "B", Product: "P1", Month: "Jan"}, 5)
	s.add(Key{Network: "A", Product: "P2", Month: "Feb"}, 3)
	s.add(Key{Network: "A", Product: "P1", Month: "Mar"}, 2)
	s.add(Key{Network: "A", Product: "P1", Month: "Feb"}, 1)
	s.add(Key{Network: "A", Product: "P1", Month: "Feb"}, 4)

	got := s.Entries()
	require.Equal(t, []Entry{
		{Key: Key{Network: "A", Product: "P1", Month: "Feb"}, Bucket: Bucket{Count: 2, Total: 5}},
		{Key: Key{Network: "A", Product: "P1", Month: "Mar"}, Bucket: Bucket{Count: 1, Total: 2}},
		{Key: Key{Network: "A", Product: "P2", Month: "Feb"}, Bucket: Bucket{Count: 1, Total: 3}},
		{Key: Key{Network: "B", Product: "P1", Month: "Jan"}, Bucket: Bucket{Count: 1, Total: 5}},
	}, got)

	// Snapshot is a copy.
	got[0].Count = 99
	require.Equal(t, int64(2), s.Count("A", "P1", "Feb"))
}
