// Package bvh implements a bounding volume hierarchy over geometry.
//
// The tree is an object-median split: each range of elements is sorted along
// the longest axis of its bounds and cut in half.  It makes no attempt at a
// surface area heuristic.
package bvh

import (
	"sort"

	"harpoon/aabox"
	"harpoon/contact"
	"harpoon/geometry"
	"harpoon/ray"
)

// Node is an interior node of the hierarchy.  Left and Right may be the same
// Geometry when a range holds a single element.
type Node struct {
	Left, Right geometry.Geometry
	Bounds      aabox.AABox
}

// New builds a hierarchy over items.  The input slice is not modified.  An
// empty input yields an empty list, which never reports a hit.
func New(items []geometry.Geometry) geometry.Geometry {
	if len(items) == 0 {
		return geometry.NewList()
	}

	work := make([]geometry.Geometry, len(items))
	copy(work, items)
	return build(work)
}

// FromList builds a hierarchy over the members of l.
func FromList(l *geometry.List) geometry.Geometry {
	return New(l.Items())
}

// build partitions elements in place.  len(elements) must be nonzero.
func build(elements []geometry.Geometry) *Node {
	bounds := aabox.AccumZeroAABox()
	for _, e := range elements {
		bounds = aabox.MinContainingAABox(bounds, e.GetAABox())
	}

	cur := &Node{Bounds: bounds}

	switch len(elements) {
	case 1:
		cur.Left = elements[0]
		cur.Right = elements[0]
	case 2:
		cur.Left = elements[0]
		cur.Right = elements[1]
	default:
		axis := bounds.LongestAxis()
		sort.SliceStable(elements, func(i, j int) bool {
			return elements[i].GetAABox().Axis(axis).Lo < elements[j].GetAABox().Axis(axis).Lo
		})

		mid := len(elements) / 2
		cur.Left = build(elements[:mid])
		cur.Right = build(elements[mid:])
	}

	return cur
}

func (n *Node) GetAABox() aabox.AABox {
	return n.Bounds
}

// RayInto queries the left child first, then asks the right child only for
// contacts nearer than whatever the left child found.
func (n *Node) RayInto(query ray.RaySegment) (contact.Contact, bool) {
	if !n.Bounds.RayTest(query) {
		return contact.Contact{}, false
	}

	leftContact, leftHit := n.Left.RayInto(query)
	if leftHit {
		query.TheSegment.Hi = leftContact.T
	}

	rightContact, rightHit := n.Right.RayInto(query)
	if rightHit {
		return rightContact, true
	}

	return leftContact, leftHit
}

// TreeStats summarizes the shape of a hierarchy.
type TreeStats struct {
	Nodes  int
	Leaves int
	Depth  int

	// Surface areas of the root box and the sum over leaf boxes.  Both stay
	// zero when the root box is unbounded or empty.
	RootArea float64
	LeafArea float64
}

// Stats walks the hierarchy rooted at g.  Anything that isn't a *Node counts
// as a leaf; aliased single-element children are counted once.
func Stats(g geometry.Geometry) TreeStats {
	stats := TreeStats{}
	box := g.GetAABox()
	measured := box.IsFinite() && !box.IsEmpty()
	if measured {
		stats.RootArea = box.SurfaceArea()
	}

	type frame struct {
		g     geometry.Geometry
		depth int
	}

	workStack := []frame{{g, 1}}
	for len(workStack) != 0 {
		cur := workStack[len(workStack)-1]
		workStack = workStack[:len(workStack)-1]

		if cur.depth > stats.Depth {
			stats.Depth = cur.depth
		}

		n, ok := cur.g.(*Node)
		if !ok {
			stats.Leaves++
			if measured {
				stats.LeafArea += cur.g.GetAABox().SurfaceArea()
			}
			continue
		}

		stats.Nodes++
		workStack = append(workStack, frame{n.Left, cur.depth + 1})
		if n.Right != n.Left {
			workStack = append(workStack, frame{n.Right, cur.depth + 1})
		}
	}

	return stats
}
