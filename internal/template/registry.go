// Package template manages report templates. Templates are mustache
// documents producing markdown; missing context keys render as empty
// strings rather than failing the report.
package template

import (
	"fmt"
	"sync"
	"time"

	"github.com/cbroglie/mustache"

	"github.com/pvlab/backend/internal/models"
)

// Template is a renderable report layout plus its metadata.
type Template struct {
	ID                 string            `json:"template_id"`
	Name               string            `json:"name"`
	ReportType         models.ReportType `json:"report_type"`
	Description        string            `json:"description"`
	Sections           []string          `json:"sections"`
	RequiredFields     []string          `json:"required_fields"`
	IncludeTOC         bool              `json:"include_toc"`
	IncludePageNumbers bool              `json:"include_page_numbers"`
	Content            string            `json:"-"`

	compiled *mustache.Template
}

// LabInfo is the laboratory identity injected into every rendering.
type LabInfo struct {
	Name     string
	NABLCert string
	Address  string
	Phone    string
	Email    string
}

// Registry holds built-in and custom templates. Listing preserves
// registration order.
type Registry struct {
	mu        sync.RWMutex
	order     []string
	templates map[string]*Template
	defaults  map[models.ReportType]string
	lab       LabInfo
}

func NewRegistry(lab LabInfo) (*Registry, error) {
	r := &Registry{
		templates: make(map[string]*Template),
		defaults: map[models.ReportType]string{
			models.ReportTypeTestResult:  "test_result_iec61215",
			models.ReportTypePerformance: "performance_report",
			models.ReportTypeCompliance:  "compliance_report",
		},
		lab: lab,
	}

	for _, t := range builtinTemplates() {
		if err := r.Register(t); err != nil {
			return nil, fmt.Errorf("failed to register builtin template %s: %w", t.ID, err)
		}
	}
	return r, nil
}

// Register compiles and stores a template. Re-registering an id replaces
// the previous template.
func (r *Registry) Register(t *Template) error {
	compiled, err := mustache.ParseString(t.Content)
	if err != nil {
		return fmt.Errorf("invalid template %s: %w", t.ID, err)
	}
	t.compiled = compiled

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.templates[t.ID]; !exists {
		r.order = append(r.order, t.ID)
	}
	r.templates[t.ID] = t
	return nil
}

func (r *Registry) Get(id string) (*Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.templates[id]
	return t, ok
}

// List returns all templates in registration order.
func (r *Registry) List() []*Template {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Template, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.templates[id])
	}
	return out
}

// DefaultFor returns the default template id for a report type.
func (r *Registry) DefaultFor(rt models.ReportType) (string, bool) {
	id, ok := r.defaults[rt]
	return id, ok
}

// Render fills a template with the given context on top of the lab
// defaults. Caller keys win over defaults.
func (r *Registry) Render(id string, ctx map[string]any) (string, error) {
	r.mu.RLock()
	t, ok := r.templates[id]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("template not found: %s", id)
	}

	now := time.Now()
	merged := map[string]any{
		"lab_name":      r.lab.Name,
		"lab_nabl_cert": r.lab.NABLCert,
		"lab_address":   r.lab.Address,
		"lab_phone":     r.lab.Phone,
		"lab_email":     r.lab.Email,
		"current_date":  now.Format("2006-01-02"),
		"current_year":  now.Year(),
	}
	for k, v := range ctx {
		merged[k] = v
	}

	out, err := t.compiled.Render(merged)
	if err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", id, err)
	}
	return out, nil
}

// Validate checks template syntax without registering anything.
func Validate(content string) error {
	if _, err := mustache.ParseString(content); err != nil {
		return fmt.Errorf("invalid template syntax: %w", err)
	}
	return nil
}
