package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product represents a sellable catalog item
type Product struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name" validate:"required"`
	Price     float64            `bson:"price" json:"price"`
	Image     string             `bson:"image" json:"image" validate:"required"` // URL or reference of the product image
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CollectionName Specify collection name
func (Product) CollectionName() string {
	return "products"
}

// Validate runs the schema rules against the whole document
func (p *Product) Validate() error {
	return toValidationError(validate.Struct(p))
}

// ProductFields is a partial set of writable product fields; nil means absent.
type ProductFields struct {
	Name  *string
	Price *float64
	Image *string
}

// IsEmpty reports whether no field is set
func (f ProductFields) IsEmpty() bool {
	return f.Name == nil && f.Price == nil && f.Image == nil
}

// Apply copies the present fields onto p
func (f ProductFields) Apply(p *Product) {
	if f.Name != nil {
		p.Name = *f.Name
	}
	if f.Price != nil {
		p.Price = *f.Price
	}
	if f.Image != nil {
		p.Image = *f.Image
	}
}

// Validate runs the schema rules for the present fields only
func (f ProductFields) Validate() error {
	names := f.structFields()
	if len(names) == 0 {
		return nil
	}
	var p Product
	f.Apply(&p)
	return toValidationError(validate.StructPartial(p, names...))
}

func (f ProductFields) structFields() []string {
	var names []string
	if f.Name != nil {
		names = append(names, "Name")
	}
	if f.Price != nil {
		names = append(names, "Price")
	}
	if f.Image != nil {
		names = append(names, "Image")
	}
	return names
}

// NewProduct builds an unsaved product from the given fields
func NewProduct(f ProductFields) *Product {
	p := &Product{}
	f.Apply(p)
	return p
}

// ParseProductID parses the hex form of a product identifier
func ParseProductID(s string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(s)
}
