package avatars

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"

	"github.com/iudanet/webkit/internal/models"
)

//go:embed templates/*.html
var embedTemplates embed.FS

// templateData контекст шаблона аватара
type templateData struct {
	URLs     map[string]template.URL
	Src      template.URL
	Srcset   template.Srcset
	Username string
	Size     int
}

// Renderer рендерит аватары пользователей в HTML
type Renderer struct {
	templates *template.Template
}

// NewRenderer создает Renderer со встроенными шаблонами
func NewRenderer() (*Renderer, error) {
	return NewRendererFS(embedTemplates, "templates/*.html")
}

// NewRendererFS создает Renderer из шаблонов в fsys.
// Шаблоны адресуются по имени файла.
func NewRendererFS(fsys fs.FS, patterns ...string) (*Renderer, error) {
	tmpl, err := template.ParseFS(fsys, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse avatar templates: %w", err)
	}
	return &Renderer{templates: tmpl}, nil
}

// Render рендерит аватар пользователя шаблоном сервиса.
// URL берутся через cache (может быть nil).
func (r *Renderer) Render(ctx context.Context, cache *RequestCache, svc Service, user *models.User, size int) (template.HTML, error) {
	urls, err := cache.URLs(ctx, svc, user, size)
	if err != nil {
		return "", err
	}

	tmpl := r.templates.Lookup(svc.TemplateName())
	if tmpl == nil {
		return "", fmt.Errorf("avatar template %q not found", svc.TemplateName())
	}

	data := templateData{
		URLs:     make(map[string]template.URL, len(urls)),
		Src:      urls[Res1x],
		Srcset:   urls.Srcset(),
		Username: user.DisplayName(),
		Size:     size,
	}
	for res, url := range urls {
		data.URLs[string(res)] = url
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render avatar: %w", err)
	}

	return template.HTML(buf.String()), nil //nolint:gosec // output of html/template
}
