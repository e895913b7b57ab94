// Package extent holds the immutable description of a single physically
// contiguous run of a file's blocks.
package extent

// Extent is a maximal run of a file's blocks placed contiguously on the
// underlying block device.
type Extent struct {
	LogicalOffset  int64 // block index inside the file, 0-based
	PhysicalOffset int32 // block index on the device
	BlockCount     int32
}

// ByLogicalDescending sorts a slice of Extent so the extent with the
// largest LogicalOffset comes first. This is the only ordering the scanner
// relies on: FileEntry.SetExtents uses it to seed its cursor at the
// smallest logical offset (the slice's tail).
type ByLogicalDescending []Extent

func (s ByLogicalDescending) Len() int      { return len(s) }
func (s ByLogicalDescending) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s ByLogicalDescending) Less(i, j int) bool {
	return s[i].LogicalOffset > s[j].LogicalOffset
}
