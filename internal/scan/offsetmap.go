package scan

import "github.com/google/btree"

// btreeDegree has nothing to tune against at directory-count scale, so the
// library's documented sweet spot is kept.
const btreeDegree = 32

// offsetMap is an ordered map keyed by physical block offset, supporting
// ceiling/floor lookups. It has no locking of its own: directoryExtentMap
// is always accessed under the coordinator's mutex (see worker.go), and
// fileExtentMap is only ever touched by one goroutine at a time because
// the worker has fully exited before the hash scan reads it.
type offsetMap[V any] struct {
	tree *btree.BTree
}

type offsetItem[V any] struct {
	key   int32
	value V
}

func (a offsetItem[V]) Less(than btree.Item) bool {
	return a.key < than.(offsetItem[V]).key
}

func newOffsetMap[V any]() *offsetMap[V] {
	return &offsetMap[V]{tree: btree.New(btreeDegree)}
}

func (m *offsetMap[V]) Set(key int32, value V) {
	m.tree.ReplaceOrInsert(offsetItem[V]{key: key, value: value})
}

func (m *offsetMap[V]) Delete(key int32) {
	m.tree.Delete(offsetItem[V]{key: key})
}

func (m *offsetMap[V]) Len() int { return m.tree.Len() }

// Ceiling returns the entry with the smallest key >= key, if any.
func (m *offsetMap[V]) Ceiling(key int32) (int32, V, bool) {
	var (
		foundKey int32
		foundVal V
		found    bool
	)
	m.tree.AscendGreaterOrEqual(offsetItem[V]{key: key}, func(i btree.Item) bool {
		it := i.(offsetItem[V])
		foundKey, foundVal, found = it.key, it.value, true
		return false
	})
	return foundKey, foundVal, found
}

// Floor returns the entry with the largest key <= key, if any.
func (m *offsetMap[V]) Floor(key int32) (int32, V, bool) {
	var (
		foundKey int32
		foundVal V
		found    bool
	)
	m.tree.DescendLessOrEqual(offsetItem[V]{key: key}, func(i btree.Item) bool {
		it := i.(offsetItem[V])
		foundKey, foundVal, found = it.key, it.value, true
		return false
	})
	return foundKey, foundVal, found
}

// Nearest returns the key in the map closest to target, ties going to the
// ceiling key.
func (m *offsetMap[V]) Nearest(target int32) (int32, V, bool) {
	ck, cv, cok := m.Ceiling(target)
	fk, fv, fok := m.Floor(target)

	switch {
	case !cok && !fok:
		var zero V
		return 0, zero, false
	case !cok:
		return fk, fv, true
	case !fok:
		return ck, cv, true
	default:
		if dist(fk, target) < dist(ck, target) {
			return fk, fv, true
		}
		return ck, cv, true
	}
}

// Ascend yields every entry in ascending key order, stopping early if fn
// returns false.
func (m *offsetMap[V]) Ascend(fn func(key int32, value V) bool) {
	m.tree.Ascend(func(i btree.Item) bool {
		it := i.(offsetItem[V])
		return fn(it.key, it.value)
	})
}

func dist(a, b int32) int64 {
	d := int64(a) - int64(b)
	if d < 0 {
		return -d
	}
	return d
}
