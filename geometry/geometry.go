package geometry

import (
	"harpoon/aabox"
	"harpoon/contact"
	"harpoon/ray"
)

// Geometry is anything a ray can strike.
//
// RayInto returns the nearest contact whose T lies within the query's span.
// Implementations are immutable once built, so a single Geometry may be
// queried from many goroutines at once.
type Geometry interface {
	GetAABox() aabox.AABox
	RayInto(query ray.RaySegment) (contact.Contact, bool)
}

// List is an unordered collection of geometry, queried by linear scan.
type List struct {
	items  []Geometry
	bounds aabox.AABox
}

func NewList(items ...Geometry) *List {
	l := &List{bounds: aabox.AccumZeroAABox()}
	for _, g := range items {
		l.Add(g)
	}
	return l
}

// Add appends g and grows the list's bounds to cover it.
func (l *List) Add(g Geometry) {
	l.items = append(l.items, g)
	l.bounds = aabox.MinContainingAABox(l.bounds, g.GetAABox())
}

func (l *List) Items() []Geometry {
	return l.items
}

func (l *List) Len() int {
	return len(l.items)
}

func (l *List) GetAABox() aabox.AABox {
	return l.bounds
}

func (l *List) RayInto(query ray.RaySegment) (contact.Contact, bool) {
	closest := contact.Contact{}
	found := false

	for _, g := range l.items {
		c, ok := g.RayInto(query)
		if !ok {
			continue
		}
		query.TheSegment.Hi = c.T
		closest = c
		found = true
	}

	return closest, found
}
