package counters

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAcceptedPerClass(t *testing.T) {
	c := New()
	c.Accepted("alert")
	c.Accepted("alert")
	c.Accepted("dns")

	require.Equal(t, uint64(2), c.AcceptedCount("alert"))
	require.Equal(t, uint64(1), c.AcceptedCount("dns"))
	require.Equal(t, uint64(0), c.AcceptedCount("never-seen"))
}

func TestInvalidAndNDPOutcomes(t *testing.T) {
	c := New()
	c.InvalidJSON()
	c.NDPEmit()
	c.NDPEmit()
	c.NDPSkipInc()

	require.Equal(t, uint64(1), c.InvalidJSONCount())
	require.Equal(t, uint64(2), c.NDPEmitCount())
	require.Equal(t, uint64(1), c.NDPSkipCount())
}

func TestSnapshotIsPointInTime(t *testing.T) {
	c := New()
	c.Accepted("alert")
	snap := c.Snapshot()
	require.Equal(t, uint64(1), snap["alert"])
	require.Equal(t, uint64(0), snap[InvalidJSON])
}

func TestConcurrentAccepted(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Accepted("alert")
		}()
	}
	wg.Wait()
	require.Equal(t, uint64(100), c.AcceptedCount("alert"))
}
