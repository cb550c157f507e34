package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/talkincode/productapi/internal/domain"
)

// checkProducts initializes the demo catalog, skipping names already present
func (a *Application) checkProducts() {
	defaultProducts := []domain.Product{
		{Name: "demo-desk", Price: 199, Image: "https://images.example.com/demo-desk.png"},
		{Name: "demo-chair", Price: 89.5, Image: "https://images.example.com/demo-chair.png"},
		{Name: "demo-lamp", Price: 24.99, Image: "https://images.example.com/demo-lamp.png"},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	existing, err := a.productRepo.List(ctx)
	if err != nil {
		zap.L().Error("failed to query products", zap.Error(err))
		return
	}
	names := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		names[p.Name] = struct{}{}
	}

	for _, p := range defaultProducts {
		if _, ok := names[p.Name]; ok {
			continue
		}
		if err := a.productRepo.Create(ctx, &p); err != nil {
			zap.L().Error("failed to create default product", zap.String("name", p.Name), zap.Error(err))
		} else {
			zap.L().Info("initialized default product", zap.String("name", p.Name), zap.String("id", p.ID.Hex()))
		}
	}
}
