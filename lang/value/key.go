package value

import "github.com/wldfngrs/olive/lang/table"

// KeyOf builds a table.Key for v, for any Value kind the hash table's
// heterogeneous key space actually supports (Bool, Null, Number, and
// interned String). Any other Obj kind cannot be used as a table key; ok is
// false in that case.
func KeyOf(v Value) (key table.Key, ok bool) {
	switch v := v.(type) {
	case Bool:
		return table.BoolKey(bool(v)), true
	case Null:
		return table.NullKey(), true
	case Number:
		return table.NumberKey(float64(v)), true
	case *ObjString:
		return table.StringKey(v.Chars), true
	default:
		return table.Key{}, false
	}
}
