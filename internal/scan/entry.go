package scan

// Entry is implemented by both FileEntry and DirEntry: the worker only
// needs a child's path and an IsDir branch to decide which extent map its
// results belong in.
type Entry interface {
	Path() string
	IsDir() bool
}
