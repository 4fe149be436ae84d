package email

import (
	"fmt"
	"html/template"
	"strings"
	"sync"
)

type Template string

const (
	TemplateWelcome      Template = "welcome"
	TemplateNotification Template = "notification"
)

const layout = `<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif;color:#222;max-width:560px;margin:auto">
{{template "content" .}}
<p style="color:#888;font-size:12px">Simbi - trade skills, not money.</p>
</body></html>`

var builtinTemplates = map[Template]string{
	TemplateWelcome: `{{define "content"}}
<h2>Welcome to Simbi, {{.Name}}!</h2>
<p>Your account is ready. List a service or browse what the community offers.</p>
<p><a href="{{.FrontendURL}}">Open Simbi</a></p>
{{end}}`,
	TemplateNotification: `{{define "content"}}
<h2>{{.Title}}</h2>
<p>Hi {{.Name}},</p>
<p>{{.Content}}</p>
{{if .ActionURL}}<p><a href="{{.ActionURL}}">View on Simbi</a></p>{{end}}
{{end}}`,
}

// TemplateManager holds parsed templates, each combined with the shared layout.
type TemplateManager struct {
	templates map[Template]*template.Template
	mutex     sync.RWMutex
}

func NewTemplateManager() (*TemplateManager, error) {
	tm := &TemplateManager{templates: make(map[Template]*template.Template)}
	for name, body := range builtinTemplates {
		if err := tm.AddTemplate(name, body); err != nil {
			return nil, err
		}
	}
	return tm, nil
}

func (tm *TemplateManager) AddTemplate(name Template, body string) error {
	tpl, err := template.New(string(name)).Parse(layout)
	if err != nil {
		return fmt.Errorf("failed to parse layout: %w", err)
	}
	if _, err := tpl.Parse(body); err != nil {
		return fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()
	return nil
}

func (tm *TemplateManager) Render(name Template, data TemplateData) (string, error) {
	tm.mutex.RLock()
	tpl, ok := tm.templates[name]
	tm.mutex.RUnlock()
	if !ok {
		return "", fmt.Errorf("template not found: %s", name)
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}
