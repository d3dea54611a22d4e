package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimiter представляет rate limiter на основе токен-бакета (token bucket)
type RateLimiter struct {
	buckets  map[string]*bucket
	cleanupC chan struct{}
	stopOnce sync.Once
	rate     int
	window   time.Duration
	mu       sync.RWMutex
}

// bucket представляет bucket для конкретного IP/ключа
type bucket struct {
	lastRefill time.Time
	tokens     int
	mu         sync.Mutex
}

// NewRateLimiter создает новый rate limiter
// rate - максимальное количество запросов за window
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets:  make(map[string]*bucket),
		rate:     rate,
		window:   window,
		cleanupC: make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// cleanup периодически удаляет неактивные buckets
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupOldBuckets()
		case <-rl.cleanupC:
			return
		}
	}
}

// cleanupOldBuckets удаляет buckets, которые не использовались дольше 2*window
func (rl *RateLimiter) cleanupOldBuckets() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for key, b := range rl.buckets {
		b.mu.Lock()
		if now.Sub(b.lastRefill) > rl.window*2 {
			delete(rl.buckets, key)
		}
		b.mu.Unlock()
	}
}

// Stop останавливает cleanup goroutine. Повторный вызов безопасен.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.cleanupC) })
}

// Allow проверяет, разрешен ли запрос для данного ключа (обычно IP адрес)
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	b, exists := rl.buckets[key]
	if !exists {
		b = &bucket{
			tokens:     rl.rate,
			lastRefill: time.Now(),
		}
		rl.buckets[key] = b
	}
	rl.mu.Unlock()

	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	if now.Sub(b.lastRefill) >= rl.window {
		b.tokens = rl.rate
		b.lastRefill = now
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}

	return false
}

// PathRateLimit отдельный лимит для конкретного пути
type PathRateLimit struct {
	Path   string
	Rate   int
	Window time.Duration
}

// PathRateLimiter набор limiters: свой для каждого пути из списка и общий для остальных
type PathRateLimiter struct {
	limiters   map[string]*RateLimiter
	fallback   *RateLimiter
	logger     *slog.Logger
	trustProxy bool
}

// PathRateLimiterOption настраивает PathRateLimiter
type PathRateLimiterOption func(*PathRateLimiter)

// WithTrustedProxy берет IP клиента из X-Forwarded-For/X-Real-IP.
// Включать только за reverse proxy, который сам выставляет эти заголовки:
// иначе клиент подменяет ключ лимита и обходит его.
func WithTrustedProxy(trust bool) PathRateLimiterOption {
	return func(p *PathRateLimiter) {
		p.trustProxy = trust
	}
}

// NewPathRateLimiter создает limiter с кастомными лимитами для путей
func NewPathRateLimiter(limits []PathRateLimit, defaultRate int, defaultWindow time.Duration, logger *slog.Logger, opts ...PathRateLimiterOption) *PathRateLimiter {
	p := &PathRateLimiter{
		limiters: make(map[string]*RateLimiter, len(limits)),
		fallback: NewRateLimiter(defaultRate, defaultWindow),
		logger:   logger,
	}
	for _, limit := range limits {
		p.limiters[limit.Path] = NewRateLimiter(limit.Rate, limit.Window)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Middleware возвращает http middleware, отклоняющий запросы сверх лимита с 429
func (p *PathRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter, exists := p.limiters[r.URL.Path]
		if !exists {
			limiter = p.fallback
		}

		key := getClientIP(r, p.trustProxy)
		if !limiter.Allow(key) {
			p.logger.WarnContext(r.Context(), "rate limit exceeded",
				slog.String("ip", key),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
			writeError(w, "rate limit exceeded, please try again later", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Stop останавливает cleanup goroutines всех limiters
func (p *PathRateLimiter) Stop() {
	for _, l := range p.limiters {
		l.Stop()
	}
	p.fallback.Stop()
}

// getClientIP извлекает IP адрес клиента из запроса.
// Заголовки прокси учитываются только при trustProxy. Из X-Forwarded-For берется
// последний адрес: его добавил наш proxy, остальные мог прислать сам клиент.
func getClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			if i := strings.LastIndexByte(xff, ','); i >= 0 {
				xff = xff[i+1:]
			}
			if ip := strings.TrimSpace(xff); ip != "" {
				return ip
			}
		}

		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
			return xri
		}
	}

	// RemoteAddr содержит порт, который меняется между соединениями
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
