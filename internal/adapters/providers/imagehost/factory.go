package imagehost

import (
	"fmt"

	"github.com/zatekoja/parkdiscovery/internal/domain/providers"
	"github.com/zatekoja/parkdiscovery/pkg/config"
)

// NewProvider builds the image provider selected by cfg.Provider
func NewProvider(cfg *config.ImageHostConfig) (providers.ImageProvider, error) {
	switch cfg.Provider {
	case "cloudinary":
		provider, err := NewCloudinaryProvider(cfg)
		if err != nil {
			return nil, err
		}
		return provider, nil
	case "local", "":
		provider, err := NewLocalProvider(cfg.LocalDir, cfg.LocalBaseURL)
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unknown image provider %q", cfg.Provider)
	}
}
