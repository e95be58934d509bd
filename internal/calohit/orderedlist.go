package calohit

import "github.com/caloflow/pfreco/internal/pfcore"

// OrderedList maps pseudo-layer to an insertion-ordered set of hit ids.
// It supports layer-wise iteration and merging and underlies both
// Cluster's hit storage and the per-hit property computations in this
// package, which need fast "hits in adjacent layers" scans.
type OrderedList struct {
	layers map[int][]pfcore.CaloHitID
	// present speeds up membership tests without scanning every layer.
	present map[pfcore.CaloHitID]int // id -> pseudo layer
}

// NewOrderedList returns an empty list.
func NewOrderedList() *OrderedList {
	return &OrderedList{
		layers:  make(map[int][]pfcore.CaloHitID),
		present: make(map[pfcore.CaloHitID]int),
	}
}

// Add inserts id at pseudoLayer, preserving insertion order within the
// layer. A no-op if id is already present at that layer.
func (l *OrderedList) Add(id pfcore.CaloHitID, pseudoLayer int) {
	if existing, ok := l.present[id]; ok && existing == pseudoLayer {
		return
	}
	l.layers[pseudoLayer] = append(l.layers[pseudoLayer], id)
	l.present[id] = pseudoLayer
}

// Remove deletes id from whichever layer it occupies.
func (l *OrderedList) Remove(id pfcore.CaloHitID) {
	layer, ok := l.present[id]
	if !ok {
		return
	}
	hits := l.layers[layer]
	for i, h := range hits {
		if h == id {
			l.layers[layer] = append(hits[:i], hits[i+1:]...)
			break
		}
	}
	if len(l.layers[layer]) == 0 {
		delete(l.layers, layer)
	}
	delete(l.present, id)
}

// Contains reports whether id is present anywhere in the list.
func (l *OrderedList) Contains(id pfcore.CaloHitID) bool {
	_, ok := l.present[id]
	return ok
}

// Layer returns the pseudo-layer of id and whether it was found.
func (l *OrderedList) Layer(id pfcore.CaloHitID) (int, bool) {
	layer, ok := l.present[id]
	return layer, ok
}

// HitsInLayer returns the hits at pseudoLayer in insertion order.
func (l *OrderedList) HitsInLayer(pseudoLayer int) []pfcore.CaloHitID {
	return l.layers[pseudoLayer]
}

// Layers returns the occupied pseudo-layers in ascending order.
func (l *OrderedList) Layers() []int {
	out := make([]int, 0, len(l.layers))
	for layer := range l.layers {
		out = append(out, layer)
	}
	// simple insertion sort: layer counts are small (tens to hundreds).
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// InnerLayer returns the lowest occupied pseudo-layer, and false if the
// list is empty.
func (l *OrderedList) InnerLayer() (int, bool) {
	layers := l.Layers()
	if len(layers) == 0 {
		return 0, false
	}
	return layers[0], true
}

// OuterLayer returns the highest occupied pseudo-layer, and false if the
// list is empty.
func (l *OrderedList) OuterLayer() (int, bool) {
	layers := l.Layers()
	if len(layers) == 0 {
		return 0, false
	}
	return layers[len(layers)-1], true
}

// All returns every hit id in the list, in layer-then-insertion order.
func (l *OrderedList) All() []pfcore.CaloHitID {
	out := make([]pfcore.CaloHitID, 0, len(l.present))
	for _, layer := range l.Layers() {
		out = append(out, l.layers[layer]...)
	}
	return out
}

// Len returns the total number of hits in the list.
func (l *OrderedList) Len() int { return len(l.present) }

// MergeFrom absorbs every hit in other into l, preserving their
// pseudo-layers. Used by Cluster merges.
func (l *OrderedList) MergeFrom(other *OrderedList) {
	for _, layer := range other.Layers() {
		for _, id := range other.layers[layer] {
			l.Add(id, layer)
		}
	}
}
