package schema

import "math"

// Values arrive from YAML, JSON or Go callers, so numbers may be any Go
// numeric type. Coercion succeeds only when the value is exactly
// representable in the target range.

func toUint(value any, limit uint64) (uint64, bool) {
	var u uint64
	switch v := value.(type) {
	case uint8:
		u = uint64(v)
	case uint16:
		u = uint64(v)
	case uint32:
		u = uint64(v)
	case uint64:
		u = v
	case uint:
		u = uint64(v)
	case int8, int16, int32, int64, int:
		i, _ := toInt(v, math.MinInt64, math.MaxInt64)
		if i < 0 {
			return 0, false
		}
		u = uint64(i)
	case float64:
		if v < 0 || v >= math.MaxUint64 || v != math.Trunc(v) {
			return 0, false
		}
		u = uint64(v)
	case float32:
		return toUint(float64(v), limit)
	default:
		return 0, false
	}
	if u > limit {
		return 0, false
	}
	return u, true
}

func toInt(value any, lo, hi int64) (int64, bool) {
	var i int64
	switch v := value.(type) {
	case int8:
		i = int64(v)
	case int16:
		i = int64(v)
	case int32:
		i = int64(v)
	case int64:
		i = v
	case int:
		i = int64(v)
	case uint8, uint16, uint32, uint64, uint:
		u, _ := toUint(v, math.MaxUint64)
		if u > math.MaxInt64 {
			return 0, false
		}
		i = int64(u)
	case float64:
		if v < math.MinInt64 || v >= math.MaxInt64 || v != math.Trunc(v) {
			return 0, false
		}
		i = int64(v)
	case float32:
		return toInt(float64(v), lo, hi)
	default:
		return 0, false
	}
	if i < lo || i > hi {
		return 0, false
	}
	return i, true
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int8, int16, int32, int64, int:
		i, _ := toInt(v, math.MinInt64, math.MaxInt64)
		return float64(i), true
	case uint8, uint16, uint32, uint64, uint:
		u, _ := toUint(v, math.MaxUint64)
		return float64(u), true
	}
	return 0, false
}
