package theme

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
)

// DefaultPreset is used when no theme is requested.
const DefaultPreset = "brand"

//go:embed presets/*.theme
var presetFS embed.FS

// Preset parses an embedded theme by name (brand, classic, modern).
func Preset(name string) (*Document, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultPreset
	}
	data, err := presetFS.ReadFile(path.Join("presets", key+".theme"))
	if err != nil {
		return nil, fmt.Errorf("未知主题 %q，可选: %s", name, strings.Join(Presets(), ", "))
	}
	doc, err := ParseString(string(data))
	if err != nil {
		return nil, fmt.Errorf("解析内置主题 %s 失败: %w", key, err)
	}
	return doc, nil
}

// Presets lists the embedded theme names.
func Presets() []string {
	entries, err := fs.ReadDir(presetFS, "presets")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".theme"); ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Open 先按内置主题名查找，找不到时把参数当作文件路径读取。
func Open(nameOrPath string) (*Document, error) {
	if isPreset(nameOrPath) {
		return Preset(nameOrPath)
	}
	file, err := os.Open(nameOrPath)
	if err != nil {
		return nil, fmt.Errorf("无法打开主题文件 %s: %w", nameOrPath, err)
	}
	defer file.Close()

	doc, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("解析主题 %s 失败: %w", nameOrPath, err)
	}
	return doc, nil
}

func isPreset(name string) bool {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return true
	}
	for _, p := range Presets() {
		if p == key {
			return true
		}
	}
	return false
}
