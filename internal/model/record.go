package model

// NoMoreChunks pads the "Most Relevant Chunk" fields when similarity
// search returned fewer than the requested number of chunks.
const NoMoreChunks = "No more chunks available."

// Record is the structured classification result for one document. Field
// order is preserved: export columns appear in the order fields were
// first set.
type Record struct {
	fields []Field
	index  map[string]int
}

// Field is a single named value in a Record.
type Field struct {
	Key   string
	Value any
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{index: make(map[string]int)}
}

// Set adds a field, or overwrites it in place if the key already exists.
func (r *Record) Set(key string, value any) {
	if i, ok := r.index[key]; ok {
		r.fields[i].Value = value
		return
	}
	r.index[key] = len(r.fields)
	r.fields = append(r.fields, Field{Key: key, Value: value})
}

// Get returns the value for key and whether it is present.
func (r *Record) Get(key string) (any, bool) {
	i, ok := r.index[key]
	if !ok {
		return nil, false
	}
	return r.fields[i].Value, true
}

// Fields returns the fields in insertion order.
func (r *Record) Fields() []Field {
	return r.fields
}

// RecordSet accumulates records keyed by document title, preserving
// first-seen order. Title uniqueness is the primary invariant: a second
// document with the same title is a duplicate even if its URL differs.
type RecordSet struct {
	order   []string
	records map[string]*Record
}

// NewRecordSet creates an empty record set.
func NewRecordSet() *RecordSet {
	return &RecordSet{records: make(map[string]*Record)}
}

// Has reports whether a record exists for the given title.
func (rs *RecordSet) Has(title string) bool {
	_, ok := rs.records[title]
	return ok
}

// Add stores a record under the given title. Adding a duplicate title is
// a no-op; callers are expected to check Has first.
func (rs *RecordSet) Add(title string, rec *Record) {
	if rs.Has(title) {
		return
	}
	rs.order = append(rs.order, title)
	rs.records[title] = rec
}

// Get returns the record for a title, or nil.
func (rs *RecordSet) Get(title string) *Record {
	return rs.records[title]
}

// Titles returns record titles in first-seen order.
func (rs *RecordSet) Titles() []string {
	return rs.order
}

// Len returns the number of records.
func (rs *RecordSet) Len() int {
	return len(rs.order)
}
