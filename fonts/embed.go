package fonts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10bolditalic"
	"github.com/go-fonts/latin-modern/lmroman10italic"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"github.com/go-fonts/latin-modern/lmsans10bold"
	"github.com/go-fonts/latin-modern/lmsans10boldoblique"
	"github.com/go-fonts/latin-modern/lmsans10oblique"
	"github.com/go-fonts/latin-modern/lmsans10regular"
	"github.com/go-fonts/liberation/liberationsansbold"
	"github.com/go-fonts/liberation/liberationsansbolditalic"
	"github.com/go-fonts/liberation/liberationsansitalic"
	"github.com/go-fonts/liberation/liberationsansregular"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// Fallback 是所有字体加载失败时最后使用的内置字体。
const Fallback = "go/regular"

var builtin = map[string][]byte{
	"go/regular":     goregular.TTF,
	"go/bold":        gobold.TTF,
	"go/italic":      goitalic.TTF,
	"go/bold-italic": gobolditalic.TTF,

	"liberation/sans-regular":     liberationsansregular.TTF,
	"liberation/sans-bold":        liberationsansbold.TTF,
	"liberation/sans-italic":      liberationsansitalic.TTF,
	"liberation/sans-bold-italic": liberationsansbolditalic.TTF,

	"latin-modern/sans-regular":      lmsans10regular.TTF,
	"latin-modern/sans-bold":         lmsans10bold.TTF,
	"latin-modern/sans-italic":       lmsans10oblique.TTF,
	"latin-modern/sans-bold-italic":  lmsans10boldoblique.TTF,
	"latin-modern/roman-regular":     lmroman10regular.TTF,
	"latin-modern/roman-bold":        lmroman10bold.TTF,
	"latin-modern/roman-italic":      lmroman10italic.TTF,
	"latin-modern/roman-bold-italic": lmroman10bolditalic.TTF,
}

// Load 返回内置字体的字节数据，name 可写为 "embed:liberation/sans-bold" 或直接 "liberation/sans-bold"。
func Load(name string) ([]byte, error) {
	key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "embed:")))
	data, ok := builtin[key]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 未知字体", name)
	}
	return data, nil
}

// Names 按字母序列出全部内置字体名。
func Names() []string {
	out := make([]string, 0, len(builtin))
	for name := range builtin {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
