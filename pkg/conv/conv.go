// Package conv 提供类型转换、map/slice 转换等泛型工具，用于简化配置解析中的重复逻辑。
package conv

// ToFloat64 将 any 转为 float64。
// 支持 float64、float32、int、int64、int32；bool 视为 1.0/0.0。
func ToFloat64(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case bool:
		if val {
			return 1.0, true
		}
		return 0.0, true
	default:
		return 0, false
	}
}

// ToInt 将 any 转为 int。
// 支持 int、int64、int32、float64、float32。
func ToInt(v any) (int, bool) {
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case int32:
		return int(val), true
	case float64:
		return int(val), true
	case float32:
		return int(val), true
	default:
		return 0, false
	}
}

// ToInt64 将 any 转为 int64。
func ToInt64(v any) (int64, bool) {
	if i, ok := ToInt(v); ok {
		return int64(i), true
	}
	return 0, false
}

// ToString 将 any 转为 string。
// 仅支持 string 类型，否则返回 ("", false)。
func ToString(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// ConfigGet 从配置 map 中取出类型为 T 的值，缺失或类型不符时返回默认值。
func ConfigGet[T any](config map[string]any, key string, def T) T {
	if config == nil {
		return def
	}
	if v, ok := config[key]; ok {
		if t, ok := v.(T); ok {
			return t
		}
	}
	return def
}

// ConfigGetInt 从配置 map 中取出整数值（兼容 YAML/JSON 的 int/float 解码差异）。
func ConfigGetInt(config map[string]any, key string, def int) int {
	if config == nil {
		return def
	}
	if v, ok := config[key]; ok {
		if i, ok := ToInt(v); ok {
			return i
		}
	}
	return def
}

// ConfigGetFloat 从配置 map 中取出浮点值。
func ConfigGetFloat(config map[string]any, key string, def float64) float64 {
	if config == nil {
		return def
	}
	if v, ok := config[key]; ok {
		if f, ok := ToFloat64(v); ok {
			return f
		}
	}
	return def
}

// SliceAnyToInt64 将 []any 转为 []int64，不可转换的元素被跳过。
func SliceAnyToInt64(v any) []int64 {
	if v == nil {
		return nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]int64, 0, len(raw))
	for _, e := range raw {
		if i, ok := ToInt64(e); ok {
			out = append(out, i)
		}
	}
	return out
}
