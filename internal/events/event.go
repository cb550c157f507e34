package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/talkincode/productapi/internal/domain"
)

const (
	TypeProductCreated = "product.created"
	TypeProductUpdated = "product.updated"
	TypeProductDeleted = "product.deleted"
)

// ProductEvent is a change notification for a single product; Type doubles as the routing key
type ProductEvent struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	ProductID string          `json:"product_id"`
	Product   *domain.Product `json:"product,omitempty"`
	Time      time.Time       `json:"time"`
}

// NewProductEvent builds an event of the given type for p
func NewProductEvent(eventType string, p *domain.Product) ProductEvent {
	evt := ProductEvent{
		ID:   uuid.NewString(),
		Type: eventType,
		Time: time.Now().UTC(),
	}
	if p != nil {
		evt.ProductID = p.ID.Hex()
		evt.Product = p
	}
	return evt
}
