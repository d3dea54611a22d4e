package avatars

import (
	"context"
	"html/template"
	"net/url"
	"strconv"

	"github.com/iudanet/webkit/internal/models"
)

const (
	// InitialsServiceID id сервиса аватаров из инициалов
	InitialsServiceID = "initials"
	// DefaultInitialsBaseURL dicebear initials endpoint
	DefaultInitialsBaseURL = "https://api.dicebear.com/9.x/initials/svg"
)

// InitialsService строит детерминированный аватар из отображаемого имени пользователя.
// Не требует ни email, ни загрузки файла, поэтому подходит как запасной вариант.
type InitialsService struct {
	BaseService
	baseURL string
}

// NewInitialsService создает сервис инициалов
func NewInitialsService(baseURL string) *InitialsService {
	if baseURL == "" {
		baseURL = DefaultInitialsBaseURL
	}
	return &InitialsService{
		BaseService: BaseService{
			ServiceID:   InitialsServiceID,
			ServiceName: "Initials",
		},
		baseURL: baseURL,
	}
}

// AvatarURLsUncached returns 1x, 2x and 3x URLs seeded by the display name
func (s *InitialsService) AvatarURLsUncached(ctx context.Context, user *models.User, size int) (URLs, error) {
	seed := user.DisplayName()

	urls := make(URLs, len(Resolutions))
	for _, res := range Resolutions {
		params := url.Values{}
		params.Set("seed", seed)
		params.Set("size", strconv.Itoa(size*res.Multiplier()))
		urls[res] = template.URL(s.baseURL + "?" + params.Encode()) //nolint:gosec // query is escaped
	}

	return urls, nil
}
