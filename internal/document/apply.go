package document

import "sort"

// Edit replaces [Start, End) with Text. Positions are in the coordinates of
// the document before any edit of the batch is applied.
type Edit struct {
	Start Position
	End   Position
	Text  string
}

// ApplyEdits applies non-overlapping edits as one undo step. Edits are
// applied from the end of the document backwards so earlier positions stay
// valid. Overlapping edits are dropped.
func (d *Document) ApplyEdits(edits []Edit) {
	if len(edits) == 0 {
		return
	}
	sorted := make([]Edit, len(edits))
	for i, e := range edits {
		r := NewRange(d.Clamp(e.Start), d.Clamp(e.End))
		sorted[i] = Edit{Start: r.Start, End: r.End, Text: e.Text}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[j].Start.Less(sorted[i].Start)
	})

	d.SealHistory()
	d.beginEdit()
	limit := d.End()
	for i, e := range sorted {
		if i > 0 && limit.Less(e.End) {
			continue
		}
		d.delete(e.Start, e.End)
		d.insert(e.Start, e.Text)
		limit = e.Start
	}
	d.endEdit()
	d.SealHistory()
}
