package resume

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

// Schema 返回内嵌的 JSON Schema 原文。
func Schema() []byte {
	return bytes.Clone(schemaJSON)
}

// Load 读取 JSON 简历：先做 schema 校验，再解码并检查必填字段。
func Load(r io.Reader) (*Resume, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("读取简历数据失败: %w", err)
	}
	if err := validateSchema(raw); err != nil {
		return nil, err
	}
	var out Resume
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("解析简历 JSON 失败: %w", err)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoadFile 从文件加载简历。
func LoadFile(path string) (*Resume, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开简历文件失败: %w", err)
	}
	defer f.Close()
	r, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

func validateSchema(raw []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("解析简历 JSON 失败: %w", err)
	}
	if result.Valid() {
		return nil
	}
	return &ValidationError{Fields: schemaFields(result.Errors())}
}

func schemaFields(list []gojsonschema.ResultError) []*FieldError {
	out := make([]*FieldError, 0, len(list))
	for _, e := range list {
		out = append(out, &FieldError{Path: e.Field(), Message: e.Description()})
	}
	return out
}
