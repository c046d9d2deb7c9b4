// Package geom implements the axis-aligned bounding box arithmetic shared
// by the parser and the resolver: normalization, ordering, deduplication,
// and the boolean set algebra (union, difference, intersection, symmetric
// difference) over box collections.
package geom

import "sort"

// Position is a 3-tuple of signed 32-bit integers (x, y, z).
type Position [3]int32

// Add returns the componentwise sum of p and other.
func (p Position) Add(other Position) Position {
	return Position{p[0] + other[0], p[1] + other[1], p[2] + other[2]}
}

// Box is an inclusive AABB stored as two positions (Min, Max), normalized
// per axis so that Min[i] <= Max[i] for each i.
type Box struct {
	Min Position
	Max Position
}

// Normalize builds a Box from two arbitrary corners, normalizing each axis
// independently so Min holds the componentwise minimum.
func Normalize(a, b Position) Box {
	var min, max Position
	for i := 0; i < 3; i++ {
		if a[i] <= b[i] {
			min[i], max[i] = a[i], b[i]
		} else {
			min[i], max[i] = b[i], a[i]
		}
	}
	return Box{Min: min, Max: max}
}

// Less reports whether b sorts before other under the lexicographic
// ordering on (min.x, min.y, min.z, max.x, max.y, max.z).
func (b Box) Less(other Box) bool {
	for i := 0; i < 3; i++ {
		if b.Min[i] != other.Min[i] {
			return b.Min[i] < other.Min[i]
		}
	}
	for i := 0; i < 3; i++ {
		if b.Max[i] != other.Max[i] {
			return b.Max[i] < other.Max[i]
		}
	}
	return false
}

// Equal reports structural equality after normalization.
func (b Box) Equal(other Box) bool {
	return b.Min == other.Min && b.Max == other.Max
}

// Intersects reports whether two boxes overlap on every axis.
func (b Box) Intersects(other Box) bool {
	for i := 0; i < 3; i++ {
		if b.Min[i] > other.Max[i] || b.Max[i] < other.Min[i] {
			return false
		}
	}
	return true
}

// Intersect returns the overlapping region of two boxes, or ok=false if
// they do not intersect.
func (b Box) Intersect(other Box) (Box, bool) {
	var min, max Position
	for i := 0; i < 3; i++ {
		if b.Min[i] > other.Min[i] {
			min[i] = b.Min[i]
		} else {
			min[i] = other.Min[i]
		}
		if b.Max[i] < other.Max[i] {
			max[i] = b.Max[i]
		} else {
			max[i] = other.Max[i]
		}
		if min[i] > max[i] {
			return Box{}, false
		}
	}
	return Box{Min: min, Max: max}, true
}

// Sort orders boxes lexicographically in place.
func Sort(boxes []Box) {
	sort.Slice(boxes, func(i, j int) bool { return boxes[i].Less(boxes[j]) })
}

// Canonicalize sorts, deduplicates, and merges adjacent boxes to produce
// the unique canonical decomposition required by the serializer. The
// merge pass is the coordinate-compression-free variant of the strategy
// recommended in spec §9: a greedy adjacency merge along x, then y, then
// z. It is an optimization, not a correctness requirement — dedup+sort
// alone already satisfies determinism — but it keeps output compact.
func Canonicalize(boxes []Box) []Box {
	if len(boxes) == 0 {
		return nil
	}
	Sort(boxes)
	deduped := boxes[:1]
	for _, b := range boxes[1:] {
		if !b.Equal(deduped[len(deduped)-1]) {
			deduped = append(deduped, b)
		}
	}
	merged := mergeAxis(deduped, 0)
	merged = mergeAxis(merged, 1)
	merged = mergeAxis(merged, 2)
	Sort(merged)
	return merged
}

// mergeAxis merges pairs of boxes that are adjacent along axis and
// identical on the other two axes, repeating until no further merge is
// possible along that axis.
func mergeAxis(boxes []Box, axis int) []Box {
	changed := true
	for changed {
		changed = false
		Sort(boxes)
		out := make([]Box, 0, len(boxes))
		used := make([]bool, len(boxes))
		for i := range boxes {
			if used[i] {
				continue
			}
			cur := boxes[i]
			for j := i + 1; j < len(boxes); j++ {
				if used[j] {
					continue
				}
				if merged, ok := tryMergeAxis(cur, boxes[j], axis); ok {
					cur = merged
					used[j] = true
					changed = true
				}
			}
			out = append(out, cur)
		}
		boxes = out
	}
	return boxes
}

// tryMergeAxis merges a and b into one box if they are adjacent or
// overlapping along axis and match exactly on the remaining two axes.
func tryMergeAxis(a, b Box, axis int) (Box, bool) {
	other1, other2 := (axis+1)%3, (axis+2)%3
	if a.Min[other1] != b.Min[other1] || a.Max[other1] != b.Max[other1] {
		return Box{}, false
	}
	if a.Min[other2] != b.Min[other2] || a.Max[other2] != b.Max[other2] {
		return Box{}, false
	}
	if a.Max[axis]+1 < b.Min[axis] || b.Max[axis]+1 < a.Min[axis] {
		return Box{}, false
	}
	min, max := a.Min, a.Max
	if b.Min[axis] < min[axis] {
		min[axis] = b.Min[axis]
	}
	if b.Max[axis] > max[axis] {
		max[axis] = b.Max[axis]
	}
	return Box{Min: min, Max: max}, true
}

// Union returns the concatenation of two box sets (duplicates are removed
// by a later Canonicalize pass at the region-evaluation boundary).
func Union(a, b []Box) []Box {
	out := make([]Box, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

// Difference returns the boxes of a with every box of b removed, expressed
// as a re-boxing that covers exactly the voxels of a not covered by b.
// Grounded on original_source's compute_difference / subtract_box.
func Difference(a, b []Box) []Box {
	if len(b) == 0 {
		out := make([]Box, len(a))
		copy(out, a)
		return out
	}
	var result []Box
	for _, box := range a {
		remaining := []Box{box}
		for _, sub := range b {
			var next []Box
			for _, cur := range remaining {
				next = append(next, subtract(cur, sub)...)
			}
			remaining = next
		}
		result = append(result, remaining...)
	}
	return result
}

// subtract splits from into up to six boxes representing the parts that do
// not overlap with cut.
func subtract(from, cut Box) []Box {
	if !from.Intersects(cut) {
		return []Box{from}
	}
	var out []Box
	fm, fx := from.Min, from.Max

	if fm[0] < cut.Min[0] {
		out = append(out, Box{fm, Position{cut.Min[0] - 1, fx[1], fx[2]}})
	}
	if fx[0] > cut.Max[0] {
		out = append(out, Box{Position{cut.Max[0] + 1, fm[1], fm[2]}, fx})
	}

	xMin, xMax := maxI32(fm[0], cut.Min[0]), minI32(fx[0], cut.Max[0])

	if fm[1] < cut.Min[1] {
		out = append(out, Box{Position{xMin, fm[1], fm[2]}, Position{xMax, cut.Min[1] - 1, fx[2]}})
	}
	if fx[1] > cut.Max[1] {
		out = append(out, Box{Position{xMin, cut.Max[1] + 1, fm[2]}, Position{xMax, fx[1], fx[2]}})
	}

	yMin, yMax := maxI32(fm[1], cut.Min[1]), minI32(fx[1], cut.Max[1])

	if fm[2] < cut.Min[2] {
		out = append(out, Box{Position{xMin, yMin, fm[2]}, Position{xMax, yMax, cut.Min[2] - 1}})
	}
	if fx[2] > cut.Max[2] {
		out = append(out, Box{Position{xMin, yMin, cut.Max[2] + 1}, Position{xMax, yMax, fx[2]}})
	}

	return out
}

// Intersection returns the voxels present in both a and b.
func Intersection(a, b []Box) []Box {
	var out []Box
	for _, x := range a {
		for _, y := range b {
			if box, ok := x.Intersect(y); ok {
				out = append(out, box)
			}
		}
	}
	return out
}

// XOR returns (a - b) + (b - a).
func XOR(a, b []Box) []Box {
	out := Difference(a, b)
	out = append(out, Difference(b, a)...)
	return out
}

func minI32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func maxI32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
