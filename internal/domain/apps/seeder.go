package apps

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/pauselabs/pause/backend/internal/infrastructure/logging"
	"github.com/pauselabs/pause/backend/internal/shared/types"
)

// seedFile is the on-disk TOML shape:
//
//	launchers = ["com.example.launcher"]
//	monitored = ["com.instagram.android", "com.zhiliaoapp.musically"]
type seedFile struct {
	Launchers []string `toml:"launchers"`
	Monitored []string `toml:"monitored"`
}

// Seed loads launcher and monitored entries from a TOML file into the
// registry. A missing path is not an error; the built-in launcher set
// already covers the common case.
func Seed(r *Registry, path string, logger *logging.Logger) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("apps seed file not found", zap.String("path", path))
			return nil
		}
		return fmt.Errorf("failed to read apps seed: %w", err)
	}

	var seed seedFile
	if err := toml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to parse apps seed: %w", err)
	}

	for _, id := range seed.Launchers {
		r.AddLauncher(types.AppID(id))
	}
	for _, id := range seed.Monitored {
		r.Monitor(types.AppID(id))
	}

	logger.Info("apps seeded",
		zap.String("path", path),
		zap.Int("launchers", len(seed.Launchers)),
		zap.Int("monitored", len(seed.Monitored)),
	)
	return nil
}
