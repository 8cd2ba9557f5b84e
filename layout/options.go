package layout

// BuildOptions 配置布局阶段所需的依赖，例如排版后端。
type BuildOptions struct {
	Typesetter Typesetter
	Debug      DebugOptions
}

// DebugOptions 控制调试相关输出。
type DebugOptions struct {
	RawUnits bool // 在调试 JSON 中输出 debug.rawUnits 影子字段
}

// Typesetter 负责测量文本宽度。fontSize 与返回值均为 mm。
type Typesetter interface {
	TextWidth(text string, font FontResource, fontSize float64) (float64, error)
}
