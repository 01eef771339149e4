package record

// Equal reports whether a and b have the same identity and every field,
// nested records included, compares equal. Float fields compare with ==,
// so a NaN field never equals anything.
func Equal(a, b Record) bool {
	if IsNil(a) || IsNil(b) {
		return IsNil(a) && IsNil(b)
	}
	if !SameIdentity(a, b) {
		return false
	}

	va, vb := &collector{}, &collector{}
	if a.VisitFields(va) != nil || b.VisitFields(vb) != nil {
		return false
	}
	if len(va.values) != len(vb.values) {
		return false
	}
	for i := range va.values {
		if va.values[i] != vb.values[i] {
			return false
		}
	}
	return true
}

// collector flattens a record into its primitive values. Nested shapes are
// marked by their identity so two different nested shapes never compare equal.
type collector struct {
	values []any
}

type nestedMark struct {
	id   uint32
	name string
}

func (c *collector) Bool(_ Field, v *bool) error       { c.values = append(c.values, *v); return nil }
func (c *collector) Int8(_ Field, v *int8) error       { c.values = append(c.values, *v); return nil }
func (c *collector) Int32(_ Field, v *int32) error     { c.values = append(c.values, *v); return nil }
func (c *collector) Uint32(_ Field, v *uint32) error   { c.values = append(c.values, *v); return nil }
func (c *collector) Float32(_ Field, v *float32) error { c.values = append(c.values, *v); return nil }
func (c *collector) Float64(_ Field, v *float64) error { c.values = append(c.values, *v); return nil }
func (c *collector) Text(_ Field, v *string) error     { c.values = append(c.values, *v); return nil }

func (c *collector) Nested(_ Field, r Record) error {
	c.values = append(c.values, nestedMark{id: r.ID(), name: r.LongName()})
	return r.VisitFields(c)
}
