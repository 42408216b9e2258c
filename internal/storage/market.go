package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redvale-rp/deaddrop/pkg/market"
)

// Market configuration (filesystem-backed)

func (r *RedisStorage) GetMarket(ctx context.Context, filename string) (*market.Market, error) {
	path := filepath.Join(r.dataDir, "markets", filename)
	r.logger.Debug("Loading market", "filename", filename, "full_path", path)

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			r.logger.Error("Market file not found", "path", path, "error", err)
			return nil, fmt.Errorf("market not found: %s", filename)
		}
		return nil, fmt.Errorf("failed to read market file: %w", err)
	}

	var m market.Market
	if err := json.Unmarshal(file, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal market: %w", err)
	}

	return &m, nil
}
