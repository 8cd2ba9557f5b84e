// Package story 把简历数据转换为按固定顺序排列的 flowable 序列。
package story

import (
	"fmt"
	"strings"

	"github.com/ByLCY/cvpress/layout"
	"github.com/ByLCY/cvpress/markup"
	"github.com/ByLCY/cvpress/resume"
)

// 主题中需要提供的样式、图片与颜色名称。
const (
	StyleName         = "Name"
	StyleContact      = "Contact"
	StyleLink         = "LinkStyle"
	StyleSectionTitle = "SectionTitle"
	StyleSubHeading   = "SubHeading"
	StyleNormalText   = "NormalText"
	StyleItalic       = "MyItalic"
	StyleBold         = "Bold"
	StyleBulletItem   = "BulletItem"

	ImageGitHub    = "GitHub"
	ImageLinkedIn  = "LinkedIn"
	ColorHighlight = "Highlight"

	Bullet = "• "
)

// DefaultLabels 是各段落标题与字段前缀的默认文字。
var DefaultLabels = map[string]string{
	"education":      "EDUCATION",
	"experience":     "PROFESSIONAL EXPERIENCE",
	"projects":       "ADDITIONAL PROJECTS & VOLUNTEERING",
	"extras":         "CERTIFICATIONS, SKILLS & INTERESTS",
	"certifications": "Certifications:",
	"skills":         "Skills:",
	"interests":      "Interests:",
}

// Options 控制文字内容。Labels 覆盖 DefaultLabels；Format 为空时使用简历自身的 text_format。
type Options struct {
	Labels map[string]string
	Format string
}

type builder struct {
	format string
	labels map[string]string
}

func newBuilder(r *resume.Resume, opts Options) (*builder, error) {
	format := opts.Format
	if format == "" {
		format = r.Format()
	}
	switch format {
	case resume.FormatMarkup, resume.FormatPlain, resume.FormatMarkdown:
	default:
		return nil, fmt.Errorf("不支持的文本格式 %q", format)
	}
	labels := make(map[string]string, len(DefaultLabels))
	for k, v := range DefaultLabels {
		labels[k] = v
	}
	for k, v := range opts.Labels {
		if strings.TrimSpace(v) != "" {
			labels[k] = v
		}
	}
	return &builder{format: format, labels: labels}, nil
}

// text 把一段数据文本转换为段落标记。
func (b *builder) text(s string) (string, error) {
	switch b.format {
	case resume.FormatPlain:
		return markup.Escape(s), nil
	case resume.FormatMarkdown:
		return markup.FromMarkdown(s)
	default:
		return s, nil
	}
}

func (b *builder) label(key string) string {
	return markup.Escape(b.labels[key])
}

func (b *builder) paragraph(s, style string) (*layout.Paragraph, error) {
	text, err := b.text(s)
	if err != nil {
		return nil, err
	}
	return layout.NewParagraph(text, style), nil
}

func (b *builder) sectionTitle(key string) []layout.Flowable {
	return []layout.Flowable{
		layout.NewParagraph(b.label(key), StyleSectionTitle),
		layout.HRule{Width: 100, Thickness: 1, Color: ColorHighlight, SpaceBefore: 1, SpaceAfter: 4},
	}
}

func (b *builder) prefixed(label, value string) (*layout.Paragraph, error) {
	text, err := b.text(value)
	if err != nil {
		return nil, err
	}
	if label == "" {
		return layout.NewParagraph(text, StyleNormalText), nil
	}
	return layout.NewParagraph("<b>"+label+"</b> "+text, StyleNormalText), nil
}

// sectionSpacer 对应 Spacer(1, 6)，单位为 pt。
func sectionSpacer() layout.Spacer {
	return layout.Spacer{Width: 1 * layout.PtToMm, Height: 6 * layout.PtToMm}
}

func linkMarkup(url string) string {
	u := markup.Escape(url)
	return fmt.Sprintf(`<link href="%s">%s</link>`, u, u)
}

// Build 按固定顺序生成完整的 story。
func Build(r *resume.Resume, opts Options) ([]layout.Flowable, error) {
	if r == nil {
		return nil, fmt.Errorf("简历数据为空")
	}
	b, err := newBuilder(r, opts)
	if err != nil {
		return nil, err
	}
	steps := []struct {
		name string
		fn   func([]layout.Flowable, *resume.Resume) ([]layout.Flowable, error)
	}{
		{"header", b.header},
		{"education", b.education},
		{"experience", b.experience},
		{"projects", b.projects},
		{"extras", b.extras},
	}
	var story []layout.Flowable
	for _, step := range steps {
		story, err = step.fn(story, r)
		if err != nil {
			return nil, fmt.Errorf("生成 %s 段落失败: %w", step.name, err)
		}
	}
	return story, nil
}

// AddHeader 追加姓名、联系方式、GitHub/LinkedIn 链接行与分隔线。
func AddHeader(story []layout.Flowable, r *resume.Resume, opts Options) ([]layout.Flowable, error) {
	return withBuilder(story, r, opts, (*builder).header)
}

// AddEducation 追加 EDUCATION 段落。
func AddEducation(story []layout.Flowable, r *resume.Resume, opts Options) ([]layout.Flowable, error) {
	return withBuilder(story, r, opts, (*builder).education)
}

// AddExperience 追加 PROFESSIONAL EXPERIENCE 段落。
func AddExperience(story []layout.Flowable, r *resume.Resume, opts Options) ([]layout.Flowable, error) {
	return withBuilder(story, r, opts, (*builder).experience)
}

// AddProjectsVolunteering 追加项目与志愿经历；列表为空时不输出任何内容。
func AddProjectsVolunteering(story []layout.Flowable, r *resume.Resume, opts Options) ([]layout.Flowable, error) {
	return withBuilder(story, r, opts, (*builder).projects)
}

// AddCertificationsSkillsInterests 追加证书、技能与兴趣。
func AddCertificationsSkillsInterests(story []layout.Flowable, r *resume.Resume, opts Options) ([]layout.Flowable, error) {
	return withBuilder(story, r, opts, (*builder).extras)
}

func withBuilder(story []layout.Flowable, r *resume.Resume, opts Options,
	fn func(*builder, []layout.Flowable, *resume.Resume) ([]layout.Flowable, error)) ([]layout.Flowable, error) {
	if r == nil {
		return story, fmt.Errorf("简历数据为空")
	}
	b, err := newBuilder(r, opts)
	if err != nil {
		return story, err
	}
	return fn(b, story, r)
}
