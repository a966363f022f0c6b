package filter

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/SVEX/internal/domain"
)

func TestKeepAll_CountsOnlyTotal(t *testing.T) {
	var s Stats
	for _, typ := range []domain.WorkType{domain.TypeVideo, domain.TypeImage, domain.TypeLive} {
		assert.True(t, KeepAll.Keep(domain.WorkItem{Type: typ}, &s))
	}
	assert.Equal(t, domain.FilterCounters{Total: 3}, s.Snapshot())
}

func TestTypeFilter_BreaksDownByType(t *testing.T) {
	var s Stats
	f := NewTypeFilter(domain.TypeImage, domain.TypeLive)

	assert.True(t, f.Keep(domain.WorkItem{Type: domain.TypeVideo}, &s))
	assert.False(t, f.Keep(domain.WorkItem{Type: domain.TypeImage}, &s))
	assert.False(t, f.Keep(domain.WorkItem{Type: domain.TypeLive}, &s))
	assert.False(t, f.Keep(domain.WorkItem{Type: domain.TypeLive}, &s))

	assert.Equal(t, domain.FilterCounters{Total: 4, Filtered: 3, Image: 1, Live: 2}, s.Snapshot())
}

func TestStats_ResetIsExplicitAndAccumulates(t *testing.T) {
	var s Stats
	f := NewTypeFilter(domain.TypeImage)

	f.Keep(domain.WorkItem{Type: domain.TypeImage}, &s)
	f.Keep(domain.WorkItem{Type: domain.TypeVideo}, &s)
	first := s.Snapshot()
	f.Keep(domain.WorkItem{Type: domain.TypeImage}, &s)
	second := s.Snapshot()

	assert.Greater(t, second.Total, first.Total)
	assert.Greater(t, second.Filtered, first.Filtered)

	s.Reset()
	assert.Equal(t, domain.FilterCounters{}, s.Snapshot())
}

func TestStats_Concurrent(t *testing.T) {
	var s Stats
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Seen()
				s.Excluded(domain.TypeLive)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, domain.FilterCounters{Total: 800, Filtered: 800, Live: 800}, s.Snapshot())
}

func TestStats_NilIsNoop(t *testing.T) {
	var s *Stats
	assert.NotPanics(t, func() {
		s.Seen()
		s.Excluded(domain.TypeImage)
		s.Reset()
	})
	assert.True(t, KeepAll.Keep(domain.WorkItem{}, nil))
	assert.Equal(t, domain.FilterCounters{}, s.Snapshot())
}

func TestAll(t *testing.T) {
	var s Stats
	f := All(NewTypeFilter(domain.TypeImage), Func(func(w domain.WorkItem) bool { return w.Ratio != "540p" }))

	assert.True(t, f.Keep(domain.WorkItem{Type: domain.TypeVideo, Ratio: "1080p"}, &s))
	assert.False(t, f.Keep(domain.WorkItem{Type: domain.TypeVideo, Ratio: "540p"}, &s))
	assert.False(t, f.Keep(domain.WorkItem{Type: domain.TypeImage}, &s))

	assert.Equal(t, domain.FilterCounters{Total: 3, Filtered: 2, Image: 1}, s.Snapshot())
}

func TestWriteTextfile(t *testing.T) {
	var s Stats
	NewTypeFilter(domain.TypeLive).Keep(domain.WorkItem{Type: domain.TypeLive}, &s)

	path := filepath.Join(t.TempDir(), "svex.prom")
	require.NoError(t, WriteTextfile(path, &s))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(b)
	assert.Contains(t, text, "svex_filter_seen_total 1")
	assert.Contains(t, text, "svex_filter_excluded_total 1")
	assert.Contains(t, text, "svex_filter_excluded_live_total 1")
	assert.Contains(t, text, "svex_filter_excluded_image_total 0")
}
