// Package avatars предоставляет сервисы аватаров: стратегии, которые для
// пользователя и размера возвращают набор URL в нескольких разрешениях,
// кэшируют результат в пределах одного запроса и рендерят его в HTML.
package avatars

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/iudanet/webkit/internal/models"
)

// Resolution метка плотности пикселей варианта изображения
type Resolution string

const (
	Res1x Resolution = "1x"
	Res2x Resolution = "2x"
	Res3x Resolution = "3x"
)

// Resolutions перечисляет поддерживаемые разрешения в порядке возрастания
var Resolutions = []Resolution{Res1x, Res2x, Res3x}

// Multiplier возвращает множитель размера для разрешения (1, 2, 3)
func (r Resolution) Multiplier() int {
	switch r {
	case Res2x:
		return 2
	case Res3x:
		return 3
	default:
		return 1
	}
}

// URLs отображает разрешение в безопасный URL.
// Ключ Res1x обязателен, остальные могут отсутствовать.
type URLs map[Resolution]template.URL

// Srcset собирает значение атрибута srcset из всех присутствующих разрешений
func (u URLs) Srcset() template.Srcset {
	parts := make([]string, 0, len(Resolutions))
	for _, res := range Resolutions {
		if url, ok := u[res]; ok && url != "" {
			parts = append(parts, string(url)+" "+string(res))
		}
	}
	return template.Srcset(strings.Join(parts, ", "))
}

// StringMap возвращает URL как map[string]string (для JSON ответов)
func (u URLs) StringMap() map[string]string {
	out := make(map[string]string, len(u))
	for res, url := range u {
		out[string(res)] = string(url)
	}
	return out
}

// Service определяет стратегию получения аватара.
// AvatarURLsUncached - единственный метод, который обязан реализовать
// конкретный сервис; кэширование выполняет RequestCache.
type Service interface {
	// ID уникальный идентификатор сервиса
	ID() string
	// Name человекочитаемое название
	Name() string
	// TemplateName имя шаблона для рендеринга аватара
	TemplateName() string
	// AvatarURLsUncached возвращает URL аватара пользователя без кэширования.
	// Все возвращаемые URL должны быть безопасны для вставки в HTML.
	AvatarURLsUncached(ctx context.Context, user *models.User, size int) (URLs, error)
}

// DefaultTemplateName шаблон по умолчанию
const DefaultTemplateName = "avatar.html"

// BaseService содержит общие поля сервисов и встраивается в конкретные реализации
type BaseService struct {
	ServiceID   string
	ServiceName string
	Template    string
}

// ID returns the service id
func (b *BaseService) ID() string {
	return b.ServiceID
}

// Name returns the human-readable service name
func (b *BaseService) Name() string {
	return b.ServiceName
}

// TemplateName returns the configured template or DefaultTemplateName
func (b *BaseService) TemplateName() string {
	if b.Template == "" {
		return DefaultTemplateName
	}
	return b.Template
}

// AvatarURLsUncached всегда возвращает ErrNotImplemented.
// Тип, встроивший BaseService, отсюда не виден; его добавляет RequestCache.URLs.
func (b *BaseService) AvatarURLsUncached(ctx context.Context, user *models.User, size int) (URLs, error) {
	return nil, fmt.Errorf("%T %q must implement AvatarURLsUncached: %w", b, b.ServiceID, ErrNotImplemented)
}
