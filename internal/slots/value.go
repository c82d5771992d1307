package slots

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// Value is a typed slot value. The set of implementations is closed:
// Text, Int, Decimal, DateRef and TimeRef.
type Value interface {
	// Kind names the variant for serialization.
	Kind() string
	// String renders the value for messages and logs.
	String() string
	// IsEmpty reports whether the value carries nothing. Empty values are
	// never stored in Params.
	IsEmpty() bool

	isValue()
}

// Text is a free-text or closed-vocabulary value.
type Text string

// Int is an integer quantity such as a week number.
type Int int64

// Decimal is a real-valued quantity such as a weight in kilograms.
type Decimal float64

// DateRef is an unresolved date phrase ("tomorrow", "next friday",
// "2026-03-05"). The dispatcher resolves it against the current moment.
type DateRef string

// TimeRef is an unresolved time phrase ("15:00", "evening").
type TimeRef string

func (Text) Kind() string    { return "text" }
func (Int) Kind() string     { return "int" }
func (Decimal) Kind() string { return "decimal" }
func (DateRef) Kind() string { return "date" }
func (TimeRef) Kind() string { return "time" }

func (v Text) String() string    { return string(v) }
func (v Int) String() string     { return strconv.FormatInt(int64(v), 10) }
func (v Decimal) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v DateRef) String() string { return string(v) }
func (v TimeRef) String() string { return string(v) }

func (v Text) IsEmpty() bool    { return v == "" }
func (Int) IsEmpty() bool       { return false }
func (Decimal) IsEmpty() bool   { return false }
func (v DateRef) IsEmpty() bool { return v == "" }
func (v TimeRef) IsEmpty() bool { return v == "" }

func (Text) isValue()    {}
func (Int) isValue()     {}
func (Decimal) isValue() {}
func (DateRef) isValue() {}
func (TimeRef) isValue() {}

// Params maps slot names to values. Absent slots have no key.
type Params map[string]Value

// Set stores v under slot unless v is nil or empty.
func (p Params) Set(slot string, v Value) {
	if v == nil || v.IsEmpty() {
		return
	}
	p[slot] = v
}

// Has reports whether slot holds a non-empty value.
func (p Params) Has(slot string) bool {
	v, ok := p[slot]
	return ok && v != nil && !v.IsEmpty()
}

// Merge overwrites p with every non-empty value from newer. Slots absent
// from newer are kept.
func (p Params) Merge(newer Params) {
	for k, v := range newer {
		p.Set(k, v)
	}
}

// Clone returns an independent copy.
func (p Params) Clone() Params {
	if p == nil {
		return Params{}
	}
	return maps.Clone(p)
}

// Keys returns the slot names in sorted order.
func (p Params) Keys() []string {
	return slices.Sorted(maps.Keys(p))
}

// Text returns the string form of a slot, or "".
func (p Params) Text(slot string) string {
	if v, ok := p[slot]; ok && v != nil {
		return v.String()
	}
	return ""
}

// Int returns an integer slot.
func (p Params) Int(slot string) (int64, bool) {
	switch v := p[slot].(type) {
	case Int:
		return int64(v), true
	case Decimal:
		if float64(v) == float64(int64(v)) {
			return int64(v), true
		}
	}
	return 0, false
}

// Decimal returns a numeric slot as float64.
func (p Params) Decimal(slot string) (float64, bool) {
	switch v := p[slot].(type) {
	case Decimal:
		return float64(v), true
	case Int:
		return float64(v), true
	}
	return 0, false
}

type wireValue struct {
	Kind  string          `json:"kind"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes each value with its kind so snapshots restore the
// same variants.
func (p Params) MarshalJSON() ([]byte, error) {
	out := make(map[string]wireValue, len(p))
	for k, v := range p {
		if v == nil {
			continue
		}
		var raw any
		switch tv := v.(type) {
		case Int:
			raw = int64(tv)
		case Decimal:
			raw = float64(tv)
		default:
			raw = tv.String()
		}
		b, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("marshal slot %q: %w", k, err)
		}
		out[k] = wireValue{Kind: v.Kind(), Value: b}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (p *Params) UnmarshalJSON(data []byte) error {
	var in map[string]wireValue
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	out := make(Params, len(in))
	for k, w := range in {
		v, err := decodeValue(w)
		if err != nil {
			return fmt.Errorf("unmarshal slot %q: %w", k, err)
		}
		out.Set(k, v)
	}
	*p = out
	return nil
}

func decodeValue(w wireValue) (Value, error) {
	switch w.Kind {
	case "int":
		var n int64
		err := json.Unmarshal(w.Value, &n)
		return Int(n), err
	case "decimal":
		var f float64
		err := json.Unmarshal(w.Value, &f)
		return Decimal(f), err
	}
	var s string
	if err := json.Unmarshal(w.Value, &s); err != nil {
		return nil, err
	}
	switch w.Kind {
	case "text":
		return Text(s), nil
	case "date":
		return DateRef(s), nil
	case "time":
		return TimeRef(s), nil
	}
	return nil, fmt.Errorf("unknown value kind %q", w.Kind)
}
