package extent

import (
	"sort"
	"testing"
)

func TestByLogicalDescending(t *testing.T) {
	extents := []Extent{
		{LogicalOffset: 0, PhysicalOffset: 100, BlockCount: 1},
		{LogicalOffset: 2, PhysicalOffset: 300, BlockCount: 1},
		{LogicalOffset: 1, PhysicalOffset: 200, BlockCount: 1},
	}

	sort.Sort(ByLogicalDescending(extents))

	want := []int64{2, 1, 0}
	for i, e := range extents {
		if e.LogicalOffset != want[i] {
			t.Errorf("extents[%d].LogicalOffset = %d, want %d", i, e.LogicalOffset, want[i])
		}
	}
}

func TestByLogicalDescendingEmpty(t *testing.T) {
	var extents []Extent
	sort.Sort(ByLogicalDescending(extents)) // must not panic
	if len(extents) != 0 {
		t.Errorf("expected empty slice, got %d elements", len(extents))
	}
}
