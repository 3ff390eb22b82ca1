package binding

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${path.to.value} 占位符替换为 data 中的取值。
// 路径支持点号字段、下标 [i] 及两者的组合；data 可以是 map、切片、数组
// 或结构体的任意嵌套。data 为空或路径无法解析时保留原占位符，
// 便于上层从输出中发现拼写错误的路径。
func Interpolate(text string, data any) string {
	if data == nil || !strings.Contains(text, "${") {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		path := strings.TrimSpace(exprPattern.FindStringSubmatch(match)[1])
		if path == "" {
			return match
		}
		val, ok := resolvePath(data, path)
		if !ok {
			return match
		}
		return render(val)
	})
}

// render 把取到的值转为标签文本，浮点数保持十进制写法并去掉尾零。
func render(val any) string {
	switch v := val.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(val)
	}
}

func resolvePath(data any, path string) (any, bool) {
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes, ok := parseSegment(segment)
		if !ok {
			return nil, false
		}
		if name != "" {
			if current, ok = descendField(current, name); !ok {
				return nil, false
			}
		}
		for _, idx := range indexes {
			if current, ok = descendIndex(current, idx); !ok {
				return nil, false
			}
		}
	}
	return current, true
}

// parseSegment 把 "points[2][0]" 拆成字段名与下标序列。
func parseSegment(segment string) (string, []int, bool) {
	name := segment
	var indexes []int
	if i := strings.IndexByte(segment, '['); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for strings.HasPrefix(rest, "[") {
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				return "", nil, false
			}
			idx, err := strconv.Atoi(strings.TrimSpace(rest[1:end]))
			if err != nil {
				return "", nil, false
			}
			indexes = append(indexes, idx)
			rest = rest[end+1:]
		}
		if rest != "" {
			return "", nil, false
		}
	}
	return name, indexes, true
}

// descendField 按 map 键或导出结构体字段下钻一层。
func descendField(current any, key string) (any, bool) {
	v := indirect(current)
	if !v.IsValid() {
		return nil, false
	}
	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := v.MapIndex(reflect.ValueOf(key).Convert(v.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true
	case reflect.Struct:
		fv := v.FieldByName(key)
		if !fv.IsValid() || !fv.CanInterface() {
			return nil, false
		}
		return fv.Interface(), true
	default:
		return nil, false
	}
}

// descendIndex 按下标下钻切片或数组。
func descendIndex(current any, idx int) (any, bool) {
	v := indirect(current)
	if !v.IsValid() {
		return nil, false
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if idx < 0 || idx >= v.Len() {
			return nil, false
		}
		return v.Index(idx).Interface(), true
	default:
		return nil, false
	}
}

// indirect 解开指针与接口包装，nil 时返回无效值。
func indirect(val any) reflect.Value {
	v := reflect.ValueOf(val)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}
