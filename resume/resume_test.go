package resume

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExampleIsValid(t *testing.T) {
	r := Example()
	if err := r.Validate(); err != nil {
		t.Fatalf("example should validate: %v", err)
	}
	if len(r.Education) != 3 || len(r.Experience) != 2 || len(r.ProjectsVolunteering) != 2 {
		t.Fatalf("unexpected example sizes: %d/%d/%d", len(r.Education), len(r.Experience), len(r.ProjectsVolunteering))
	}
	if r.Format() != FormatMarkup {
		t.Fatalf("default format should be markup, got %q", r.Format())
	}
}

func TestLoadRoundTripsExample(t *testing.T) {
	raw, err := json.Marshal(Example())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := Load(strings.NewReader(string(raw)))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Example(), got); diff != "" {
		t.Fatalf("loaded resume mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSchemaErrors(t *testing.T) {
	_, err := Load(strings.NewReader(`{"contact": "x", "github_url": "g", "linkedin_url": 3}`))
	if err == nil {
		t.Fatalf("expected schema error")
	}
	if !IsValidation(err) {
		t.Fatalf("schema failures should be validation errors, got %T", err)
	}
	msg := err.Error()
	for _, want := range []string{"name", "linkedin_url"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("error %q should mention %s", msg, want)
		}
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	_, err := Load(strings.NewReader(`{"name": `))
	if err == nil {
		t.Fatalf("expected error for truncated JSON")
	}
	if IsValidation(err) {
		t.Fatalf("syntax errors are not validation errors: %v", err)
	}
}

func TestValidateFieldPaths(t *testing.T) {
	r := Example()
	r.Contact = "  "
	r.Experience[1].Role = ""
	r.Education[2].Institution = ""
	r.ProjectsVolunteering[0].Description = ""
	r.TextFormat = "rst"

	err := r.Validate()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	var paths []string
	for _, f := range ve.Fields {
		paths = append(paths, f.Path)
	}
	want := []string{"contact", "education[2].institution", "experience[1].role", "projects_volunteering[0].description", "text_format"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("field paths mismatch (-want +got):\n%s", diff)
	}
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Path != "contact" {
		t.Fatalf("errors.As should reach the first field error, got %+v", fe)
	}
}

func TestOptionalEducationFields(t *testing.T) {
	r := Example()
	r.Education = []Education{{Institution: "Only Name"}}
	if err := r.Validate(); err != nil {
		t.Fatalf("degree/date/description are optional: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.json")
	raw, _ := json.MarshalIndent(Example(), "", "  ")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if r.Name != "John Doe" {
		t.Fatalf("unexpected name %q", r.Name)
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("missing file should error")
	}
}

func TestProjectLabel(t *testing.T) {
	cases := []struct {
		p    Project
		want string
	}{
		{Project{Year: "2019", YearRange: "2018-2019"}, "2019"},
		{Project{YearRange: "2018-2019"}, "2018-2019"},
		{Project{}, ""},
	}
	for _, c := range cases {
		if got := c.p.Label(); got != c.want {
			t.Fatalf("Label() = %q, want %q", got, c.want)
		}
	}
}

func TestToMap(t *testing.T) {
	m := Example().ToMap()
	if m["name"] != "John Doe" {
		t.Fatalf("unexpected name %v", m["name"])
	}
	edu, ok := m["education"].([]any)
	if !ok || len(edu) != 3 {
		t.Fatalf("education should be a generic list, got %T", m["education"])
	}
	first := edu[0].(map[string]any)
	if first["institution"] != "Lorem Ipsum University" {
		t.Fatalf("unexpected institution %v", first["institution"])
	}
}
