package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/junaidrashid-git/swiftcart-api/models"
	"go.uber.org/zap"
)

//go:embed seed.json
var seedJSON []byte

var errHasRecords = errors.New("collection is not empty")

type seedData struct {
	Banners  []string         `json:"banners"`
	Products []models.Product `json:"products"`
}

// Seed fills empty product and banner collections with the default catalog.
// Collections that already hold records are left alone.
func (s *Service) Seed(ctx context.Context) error {
	var seed seedData
	if err := json.Unmarshal(seedJSON, &seed); err != nil {
		return fmt.Errorf("decode seed catalog: %w", err)
	}

	seeded, err := s.products.Mutate(ctx, func(all []models.Product) ([]models.Product, error) {
		if len(all) > 0 {
			return nil, errHasRecords
		}
		return seed.Products, nil
	})
	if err != nil && !errors.Is(err, errHasRecords) {
		return fmt.Errorf("seed products: %w", err)
	}
	if err == nil {
		s.log.Info("seeded products", zap.Int("count", len(seeded)))
	}

	banners, err := s.banners.Mutate(ctx, func(all []string) ([]string, error) {
		if len(all) > 0 {
			return nil, errHasRecords
		}
		return seed.Banners, nil
	})
	if err != nil && !errors.Is(err, errHasRecords) {
		return fmt.Errorf("seed banners: %w", err)
	}
	if err == nil {
		s.log.Info("seeded banners", zap.Int("count", len(banners)))
	}
	return nil
}
