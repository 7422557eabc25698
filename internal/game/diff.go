package game

// DiffAccumulator collects the tick's externally visible changes. Every
// mutation site records through it and the tick resets it once, after
// dispatch.
type DiffAccumulator struct {
	full    EntitySet
	partial EntitySet
	deleted EntitySet
}

func NewDiffAccumulator() *DiffAccumulator {
	return &DiffAccumulator{
		full:    make(EntitySet),
		partial: make(EntitySet),
		deleted: make(EntitySet),
	}
}

// MarkFull records a structural change (spawn, destruction, type change).
func (d *DiffAccumulator) MarkFull(e Entity) {
	d.full.Add(e)
}

// MarkPartial records a value change (position, rotation, health).
func (d *DiffAccumulator) MarkPartial(e Entity) {
	d.partial.Add(e)
}

// MarkDeleted records that e left the registry.
func (d *DiffAccumulator) MarkDeleted(e Entity) {
	d.deleted.Add(e)
}

func (d *DiffAccumulator) IsFull(e Entity) bool    { return d.full.Has(e) }
func (d *DiffAccumulator) IsPartial(e Entity) bool { return d.partial.Has(e) }
func (d *DiffAccumulator) IsDeleted(e Entity) bool { return d.deleted.Has(e) }

// Deleted exposes the deleted set for read-only iteration.
func (d *DiffAccumulator) Deleted() EntitySet {
	return d.deleted
}

// Empty reports whether nothing was recorded this tick.
func (d *DiffAccumulator) Empty() bool {
	return d.full.Len() == 0 && d.partial.Len() == 0 && d.deleted.Len() == 0
}

// Reset clears all three sets.
func (d *DiffAccumulator) Reset() {
	d.full.Clear()
	d.partial.Clear()
	d.deleted.Clear()
}

// Classify projects the global sets onto one client. Order matters: full
// first, partial only when not already full, deleted only when it is not
// the client's own entity.
func (d *DiffAccumulator) Classify(visible EntitySet, self Entity, out *ClientDiff) {
	for id, e := range d.full {
		if _, ok := visible[id]; ok {
			out.Full.Add(e)
		}
	}
	for id, e := range d.partial {
		if _, ok := visible[id]; !ok {
			continue
		}
		if !out.Full.Has(e) {
			out.Partial.Add(e)
		}
	}
	for id, e := range d.deleted {
		if _, ok := visible[id]; !ok {
			continue
		}
		if self == nil || id != self.ID() {
			out.Deleted.Add(e)
		}
	}
}

// ClientDiff is one client's share of the tick's changes.
type ClientDiff struct {
	Full    EntitySet
	Partial EntitySet
	Deleted EntitySet
}

func NewClientDiff() ClientDiff {
	return ClientDiff{
		Full:    make(EntitySet),
		Partial: make(EntitySet),
		Deleted: make(EntitySet),
	}
}

func (c *ClientDiff) Reset() {
	c.Full.Clear()
	c.Partial.Clear()
	c.Deleted.Clear()
}
