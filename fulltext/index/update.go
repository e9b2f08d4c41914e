package index

// Op describes how a field update is applied to a stored document.
type Op uint8

const (
	// OpSet replaces the stored field value; an empty list removes it.
	OpSet Op = iota

	// OpLiteral writes the value as-is, without an update modifier.
	OpLiteral
)

// FieldUpdate is a single partial-update directive.
type FieldUpdate struct {
	Name  string
	Op    Op
	Value interface{}
}

// Update is an ordered list of field directives for a single document.
// Applying an Update never replaces the whole stored document.
type Update struct {
	// The primary key of the document to update.
	Key string

	// The field directives, in the order they were staged.
	Fields []FieldUpdate
}

// NewUpdate returns an empty update for the document with the specified key.
func NewUpdate(key string) *Update {
	return &Update{Key: key}
}

// Set stages a "set" directive for a field.
func (u *Update) Set(name string, value interface{}) {
	u.put(FieldUpdate{Name: name, Op: OpSet, Value: value})
}

// SetLiteral stages a literal value for a field.
func (u *Update) SetLiteral(name string, value interface{}) {
	u.put(FieldUpdate{Name: name, Op: OpLiteral, Value: value})
}

// put replaces any directive for the same field in place or appends a new one.
func (u *Update) put(f FieldUpdate) {
	for i := range u.Fields {
		if u.Fields[i].Name == f.Name {
			u.Fields[i] = f
			return
		}
	}
	u.Fields = append(u.Fields, f)
}

// Get returns the directive staged for the named field.
func (u *Update) Get(name string) (FieldUpdate, bool) {
	for _, f := range u.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldUpdate{}, false
}

// Reset discards all staged directives.
func (u *Update) Reset() {
	u.Fields = u.Fields[:0]
}

// Clone returns a copy of the update. Field values are shared.
func (u *Update) Clone() *Update {
	return &Update{
		Key:    u.Key,
		Fields: append([]FieldUpdate(nil), u.Fields...),
	}
}

// IsEmptyValue returns true if v is a nil or zero-length list; setting a
// field to such a value clears it.
func IsEmptyValue(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case []string:
		return len(val) == 0
	case []interface{}:
		return len(val) == 0
	default:
		return false
	}
}
