package domain

// RecordSet is an ordered, title-keyed collection of records. Adding a
// record whose title is already present replaces the stored record but
// keeps the title's original position, so iteration order is always
// first-insertion order with last-write-wins values.
type RecordSet struct {
	order []string
	byKey map[string]Record
}

// NewRecordSet returns an empty RecordSet.
func NewRecordSet() *RecordSet {
	return &RecordSet{
		byKey: make(map[string]Record),
	}
}

// Add inserts or replaces the record keyed by its title. Records with an
// empty title are ignored.
func (rs *RecordSet) Add(rec Record) {
	if rec.Title == "" {
		return
	}
	if _, exists := rs.byKey[rec.Title]; !exists {
		rs.order = append(rs.order, rec.Title)
	}
	rs.byKey[rec.Title] = rec
}

// AddAll inserts every record in order.
func (rs *RecordSet) AddAll(recs []Record) {
	for _, rec := range recs {
		rs.Add(rec)
	}
}

// Len returns the number of unique titles held.
func (rs *RecordSet) Len() int {
	return len(rs.order)
}

// Records returns the held records in first-insertion order.
func (rs *RecordSet) Records() []Record {
	out := make([]Record, 0, len(rs.order))
	for _, title := range rs.order {
		out = append(out, rs.byKey[title])
	}
	return out
}

// Sources returns the distinct source labels in first-seen order.
func (rs *RecordSet) Sources() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, title := range rs.order {
		src := rs.byKey[title].Source
		if _, ok := seen[src]; ok {
			continue
		}
		seen[src] = struct{}{}
		out = append(out, src)
	}
	return out
}
