package fonts

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// 内置字体使用 Go 字体家族，按风格命名。
var builtin = map[string][]byte{
	"regular":     goregular.TTF,
	"bold":        gobold.TTF,
	"italic":      goitalic.TTF,
	"bold-italic": gobolditalic.TTF,
	"mono":        gomono.TTF,
}

// Load 返回内置字体的字节数据，name 可写为 "builtin:bold" 或直接 "bold"；
// 空名称回退到 regular。
func Load(name string) ([]byte, error) {
	key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "builtin:")))
	if key == "" {
		key = "regular"
	}
	data, ok := builtin[key]
	if !ok {
		return nil, fmt.Errorf("未收录的内置字体 %s", name)
	}
	return data, nil
}

// Names 按字典序返回全部内置字体名称。
func Names() []string {
	out := make([]string, 0, len(builtin))
	for name := range builtin {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
