package avatars

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/iudanet/webkit/internal/models"
)

// cacheKey identifies one memoised lookup
type cacheKey struct {
	userID    string
	serviceID string
	size      int
}

func (k cacheKey) String() string {
	return k.userID + "\x00" + k.serviceID + "\x00" + strconv.Itoa(k.size)
}

// RequestCache хранит результаты получения URL аватаров в пределах одного запроса.
// Создается на каждый входящий запрос (см. middleware) и не разделяется
// между запросами.
type RequestCache struct {
	entries map[cacheKey]URLs
	// inflight объединяет параллельные запросы одного ключа в один вызов сервиса
	inflight singleflight.Group
	mu       sync.Mutex
}

// NewRequestCache создает пустой кэш
func NewRequestCache() *RequestCache {
	return &RequestCache{
		entries: make(map[cacheKey]URLs),
	}
}

// URLs возвращает URL аватара пользователя для сервиса и размера.
// Повторный вызов с той же тройкой (user, service, size) возвращает
// закэшированное значение без обращения к сервису. Ошибки не кэшируются.
// На nil кэше каждый вызов обращается к сервису.
func (c *RequestCache) URLs(ctx context.Context, svc Service, user *models.User, size int) (URLs, error) {
	if user == nil {
		return nil, ErrNoUser
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}

	if c == nil {
		return fetchURLs(ctx, svc, user, size)
	}

	key := cacheKey{userID: user.ID, serviceID: svc.ID(), size: size}

	c.mu.Lock()
	urls, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		return urls, nil
	}

	// Сервис вызывается без блокировки: он может быть медленным
	v, err, _ := c.inflight.Do(key.String(), func() (any, error) {
		c.mu.Lock()
		cached, ok := c.entries[key]
		c.mu.Unlock()
		if ok {
			return cached, nil
		}

		fetched, err := fetchURLs(ctx, svc, user, size)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = fetched
		c.mu.Unlock()
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(URLs), nil
}

// Len returns the number of cached entries
func (c *RequestCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func fetchURLs(ctx context.Context, svc Service, user *models.User, size int) (URLs, error) {
	urls, err := svc.AvatarURLsUncached(ctx, user, size)
	if err != nil {
		if errors.Is(err, ErrNotImplemented) {
			return nil, fmt.Errorf("%T: %w", svc, err)
		}
		return nil, err
	}
	if url, ok := urls[Res1x]; !ok || url == "" {
		return nil, fmt.Errorf("avatar service %q: %w", svc.ID(), ErrMissingBaseResolution)
	}
	return urls, nil
}

type cacheContextKey struct{}

// WithRequestCache возвращает контекст, содержащий кэш
func WithRequestCache(ctx context.Context, cache *RequestCache) context.Context {
	return context.WithValue(ctx, cacheContextKey{}, cache)
}

// RequestCacheFromContext извлекает кэш из контекста. Возвращает nil, если кэша нет.
func RequestCacheFromContext(ctx context.Context) *RequestCache {
	cache, _ := ctx.Value(cacheContextKey{}).(*RequestCache)
	return cache
}

// GetAvatarURLs получает URL через кэш текущего запроса (если он есть в контексте)
func GetAvatarURLs(ctx context.Context, svc Service, user *models.User, size int) (URLs, error) {
	return RequestCacheFromContext(ctx).URLs(ctx, svc, user, size)
}
