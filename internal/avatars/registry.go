package avatars

import (
	"fmt"
	"sort"
	"sync"

	"github.com/iudanet/webkit/internal/models"
)

// Registry хранит зарегистрированные сервисы аватаров и сервис по умолчанию
type Registry struct {
	services  map[string]Service
	defaultID string
	mu        sync.RWMutex
}

// NewRegistry создает пустой реестр
func NewRegistry() *Registry {
	return &Registry{
		services: make(map[string]Service),
	}
}

// Register добавляет сервис. Первый зарегистрированный сервис становится сервисом по умолчанию.
func (r *Registry) Register(svc Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := svc.ID()
	if id == "" {
		return fmt.Errorf("avatar service id cannot be empty")
	}
	if _, exists := r.services[id]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, id)
	}

	r.services[id] = svc
	if r.defaultID == "" {
		r.defaultID = id
	}

	return nil
}

// Get возвращает сервис по id
func (r *Registry) Get(id string) (Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	svc, ok := r.services[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, id)
	}
	return svc, nil
}

// SetDefault назначает сервис по умолчанию
func (r *Registry) SetDefault(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.services[id]; !ok {
		return fmt.Errorf("%w: %s", ErrServiceNotFound, id)
	}
	r.defaultID = id
	return nil
}

// Default возвращает сервис по умолчанию
func (r *Registry) Default() (Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.defaultID == "" {
		return nil, ErrServiceNotFound
	}
	return r.services[r.defaultID], nil
}

// ForUser возвращает выбранный пользователем сервис, если он зарегистрирован,
// иначе сервис по умолчанию
func (r *Registry) ForUser(user *models.User) (Service, error) {
	if user != nil && user.AvatarServiceID != "" {
		if svc, err := r.Get(user.AvatarServiceID); err == nil {
			return svc, nil
		}
	}
	return r.Default()
}

// All возвращает все сервисы, отсортированные по id
func (r *Registry) All() []Service {
	r.mu.RLock()
	defer r.mu.RUnlock()

	services := make([]Service, 0, len(r.services))
	for _, svc := range r.services {
		services = append(services, svc)
	}
	sort.Slice(services, func(i, j int) bool {
		return services[i].ID() < services[j].ID()
	})
	return services
}
