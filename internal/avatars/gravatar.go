package avatars

import (
	"context"
	"html/template"
	"net/url"
	"strconv"

	"github.com/iudanet/webkit/internal/crypto"
	"github.com/iudanet/webkit/internal/models"
)

const (
	// GravatarServiceID id сервиса gravatar
	GravatarServiceID = "gravatar"
	// DefaultGravatarBaseURL базовый URL gravatar
	DefaultGravatarBaseURL = "https://secure.gravatar.com/avatar/"
)

// GravatarService получает аватары по email пользователя с gravatar.com
type GravatarService struct {
	BaseService
	baseURL      string
	defaultImage string
	rating       string
}

// NewGravatarService создает gravatar сервис. Пустой baseURL заменяется на DefaultGravatarBaseURL.
func NewGravatarService(baseURL string) *GravatarService {
	if baseURL == "" {
		baseURL = DefaultGravatarBaseURL
	}
	return &GravatarService{
		BaseService: BaseService{
			ServiceID:   GravatarServiceID,
			ServiceName: "Gravatar Service",
		},
		baseURL:      baseURL,
		defaultImage: "mm",
		rating:       "g",
	}
}

// AvatarURLsUncached строит URL для 1x, 2x и 3x
func (s *GravatarService) AvatarURLsUncached(ctx context.Context, user *models.User, size int) (URLs, error) {
	hash := crypto.EmailHash(user.Email)

	urls := make(URLs, len(Resolutions))
	for _, res := range Resolutions {
		urls[res] = template.URL(s.avatarURL(hash, size*res.Multiplier())) //nolint:gosec // built from escaped components
	}

	return urls, nil
}

func (s *GravatarService) avatarURL(hash string, size int) string {
	params := url.Values{}
	params.Set("s", strconv.Itoa(size))
	params.Set("d", s.defaultImage)
	params.Set("r", s.rating)

	return s.baseURL + hash + "?" + params.Encode()
}
