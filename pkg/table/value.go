package table

// Value is a single nullable cell. Datasets arrive as text (CSV readers and
// spreadsheet exports hand every cell over as a string), so the engine keeps
// cells as raw text plus an explicit null marker and lets each test or
// transform interpret the text on demand.
type Value struct {
	Raw  string
	Null bool
}

// String constructs a non-null text value.
func String(raw string) Value {
	return Value{Raw: raw}
}

// Null constructs a null value.
func Null() Value {
	return Value{Null: true}
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool {
	return v.Null
}

// Text returns the raw text, or the empty string for nulls.
func (v Value) Text() string {
	if v.Null {
		return ""
	}
	return v.Raw
}

// Equal compares two values null-aware: two nulls are equal, a null and a
// non-null never are, and non-nulls compare by raw text.
func (v Value) Equal(o Value) bool {
	if v.Null || o.Null {
		return v.Null == o.Null
	}
	return v.Raw == o.Raw
}
