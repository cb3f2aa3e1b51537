package services

import (
	"fmt"
	"sort"
	"sync"

	"playbridge/internal/shared"
)

// Registry holds the configured catalog services keyed by their registry
// name ("spotify", "applemusic"). Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	services map[string]Service
}

// NewRegistry creates an empty service registry.
func NewRegistry() *Registry {
	return &Registry{services: make(map[string]Service)}
}

// Register adds a service under the given name, replacing any previous entry.
func (r *Registry) Register(name string, svc Service) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[name] = svc
}

// Get returns the service registered under name.
func (r *Registry) Get(name string) (Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	svc, ok := r.services[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnknownService, name)
	}

	return svc, nil
}

// Names returns the registered service names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// NewRegistryFromConfig builds a registry from the configured credentials.
// A service with no credentials configured is skipped rather than failing the
// whole registry, so read-only setups still work.
func NewRegistryFromConfig(config *shared.Config) (*Registry, error) {
	registry := NewRegistry()

	if config.Credentials.Spotify.ClientID != "" {
		spotify, err := NewSpotifyService(map[string]string{
			"client_id":     config.Credentials.Spotify.ClientID,
			"client_secret": config.Credentials.Spotify.ClientSecret,
			"redirect_uri":  config.Credentials.Spotify.RedirectURI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to configure spotify: %w", err)
		}
		registry.Register("spotify", spotify)
	}

	if config.Credentials.AppleMusic.DeveloperToken != "" {
		applemusic, err := NewAppleMusicService(map[string]string{
			"developer_token": config.Credentials.AppleMusic.DeveloperToken,
			"user_token":      config.Credentials.AppleMusic.UserToken,
			"storefront":      config.Credentials.AppleMusic.Storefront,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to configure apple music: %w", err)
		}
		registry.Register("applemusic", applemusic)
	}

	return registry, nil
}
