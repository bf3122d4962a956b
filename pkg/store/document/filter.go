package document

// Filter evaluation shared by store implementations.
//
// Semantics follow hosted document databases: a filter on a missing field
// never matches, and comparisons between mismatched types never match
// (rather than erroring). Numbers are compared as float64 because that is
// what JSON decoding produces.

// Matches reports whether data satisfies every filter.
func Matches(data map[string]any, filters []Filter) bool {
	for _, f := range filters {
		value, ok := data[f.Field]
		if !ok {
			return false
		}
		if !matchOne(value, f.Op, f.Value) {
			return false
		}
	}
	return true
}

func matchOne(value any, op FilterOp, target any) bool {
	switch op {
	case OpEqual:
		return equalValues(value, target)
	case OpNotEqual:
		return !equalValues(value, target)
	case OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		cmp, ok := compareValues(value, target)
		if !ok {
			return false
		}
		switch op {
		case OpLess:
			return cmp < 0
		case OpLessEqual:
			return cmp <= 0
		case OpGreater:
			return cmp > 0
		default:
			return cmp >= 0
		}
	default:
		return false
	}
}

func equalValues(a, b any) bool {
	if cmp, ok := compareValues(a, b); ok {
		return cmp == 0
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			return ab == bb
		}
	}
	return false
}

// compareValues orders two values when they have comparable types.
// Strings compare lexicographically; all numeric types compare as float64.
func compareValues(a, b any) (int, bool) {
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			switch {
			case as < bs:
				return -1, true
			case as > bs:
				return 1, true
			default:
				return 0, true
			}
		}
		return 0, false
	}

	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if !aok || !bok {
		return 0, false
	}
	switch {
	case af < bf:
		return -1, true
	case af > bf:
		return 1, true
	default:
		return 0, true
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
