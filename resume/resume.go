// Package resume 定义简历数据模型、示例数据与校验。
package resume

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// 自由文本的书写格式。
const (
	FormatMarkup   = "markup"
	FormatPlain    = "plain"
	FormatMarkdown = "markdown"
)

// Resume 是渲染所需的全部数据，JSON 键名与示例数据字典一致。
type Resume struct {
	Name                 string            `json:"name"`
	Contact              string            `json:"contact"`
	GitHubURL            string            `json:"github_url"`
	LinkedInURL          string            `json:"linkedin_url"`
	Education            []Education       `json:"education"`
	Experience           []Experience      `json:"experience"`
	ProjectsVolunteering []Project         `json:"projects_volunteering,omitempty"`
	Certifications       string            `json:"certifications"`
	Skills               string            `json:"skills"`
	Interests            string            `json:"interests"`
	Labels               map[string]string `json:"labels,omitempty"`
	TextFormat           string            `json:"text_format,omitempty"`
}

// Education 中只有 Institution 必填，其余字段为空时不输出。
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree,omitempty"`
	Date        string `json:"date,omitempty"`
	Description string `json:"description,omitempty"`
}

type Experience struct {
	Company string   `json:"company"`
	Role    string   `json:"role"`
	Period  string   `json:"period"`
	Details []string `json:"details"`
}

type Project struct {
	Year        string `json:"year,omitempty"`
	YearRange   string `json:"year_range,omitempty"`
	Description string `json:"description"`
}

// Label 返回项目前缀：优先 year，其次 year_range。
func (p Project) Label() string {
	if strings.TrimSpace(p.Year) != "" {
		return p.Year
	}
	return p.YearRange
}

// Format 返回规范化后的文本格式，空值视为 markup。
func (r *Resume) Format() string {
	f := strings.ToLower(strings.TrimSpace(r.TextFormat))
	if f == "" {
		return FormatMarkup
	}
	return f
}

// FieldError 指出校验失败的字段路径，例如 experience[1].role。
type FieldError struct {
	Path    string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationError 汇总所有字段错误。
type ValidationError struct {
	Fields []*FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Error())
	}
	return "简历数据校验失败: " + strings.Join(msgs, "; ")
}

// Unwrap 让 errors.Is / errors.As 可以访问单个字段错误。
func (e *ValidationError) Unwrap() []error {
	out := make([]error, 0, len(e.Fields))
	for _, f := range e.Fields {
		out = append(out, f)
	}
	return out
}

// IsValidation 判断 err 是否由数据校验引起。
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate 检查必填字段为非空字符串。
func (r *Resume) Validate() error {
	var fields []*FieldError
	required := func(path, value string) {
		if strings.TrimSpace(value) == "" {
			fields = append(fields, &FieldError{Path: path, Message: "不能为空"})
		}
	}

	required("name", r.Name)
	required("contact", r.Contact)
	required("github_url", r.GitHubURL)
	required("linkedin_url", r.LinkedInURL)
	for i, edu := range r.Education {
		required(fmt.Sprintf("education[%d].institution", i), edu.Institution)
	}
	for i, exp := range r.Experience {
		required(fmt.Sprintf("experience[%d].company", i), exp.Company)
		required(fmt.Sprintf("experience[%d].role", i), exp.Role)
		required(fmt.Sprintf("experience[%d].period", i), exp.Period)
	}
	for i, p := range r.ProjectsVolunteering {
		required(fmt.Sprintf("projects_volunteering[%d].description", i), p.Description)
	}
	switch r.Format() {
	case FormatMarkup, FormatPlain, FormatMarkdown:
	default:
		fields = append(fields, &FieldError{Path: "text_format", Message: fmt.Sprintf("不支持的格式 %q", r.TextFormat)})
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ToMap 返回通用 map 视图，供主题中的 ${path} 插值使用。
func (r *Resume) ToMap() map[string]any {
	raw, err := json.Marshal(r)
	if err != nil {
		return map[string]any{}
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{}
	}
	return out
}
