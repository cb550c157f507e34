package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/talkincode/productapi/internal/domain"
)

const productsNS = "test.products"

func productDoc(id primitive.ObjectID, name string, price float64, image string) bson.D {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: name},
		{Key: "price", Value: price},
		{Key: "image", Value: image},
		{Key: "createdAt", Value: now},
		{Key: "updatedAt", Value: now},
	}
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestMongoProductRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("list returns all documents", func(mt *mtest.T) {
		id1, id2 := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch,
			productDoc(id1, "Desk", 199, "http://x/desk.png"),
			productDoc(id2, "Chair", 49.5, "http://x/chair.png"),
		))

		repo := NewMongoProductRepository(mt.DB)
		products, err := repo.List(ctx)
		require.NoError(mt, err)
		require.Len(mt, products, 2)
		assert.Equal(mt, id1, products[0].ID)
		assert.Equal(mt, "Desk", products[0].Name)
		assert.Equal(mt, 49.5, products[1].Price)
	})

	mt.Run("list of empty collection is an empty slice", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch))

		products, err := NewMongoProductRepository(mt.DB).List(ctx)
		require.NoError(mt, err)
		require.NotNil(mt, products)
		assert.Empty(mt, products)
	})

	mt.Run("create assigns id and timestamps", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		p := &domain.Product{Name: "Desk", Price: 199, Image: "http://x/img.png"}
		require.NoError(mt, NewMongoProductRepository(mt.DB).Create(ctx, p))
		assert.False(mt, p.ID.IsZero())
		assert.False(mt, p.CreatedAt.IsZero())
		assert.Equal(mt, p.CreatedAt, p.UpdatedAt)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "insert", evt.CommandName)
	})

	mt.Run("create rejects invalid documents before writing", func(mt *mtest.T) {
		p := &domain.Product{Price: 199, Image: "http://x/img.png"}
		err := NewMongoProductRepository(mt.DB).Create(ctx, p)
		require.Error(mt, err)
		assert.True(mt, domain.IsValidationError(err))
		assert.True(mt, p.ID.IsZero())
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("create surfaces storage failures", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "boom",
		}))

		p := &domain.Product{Name: "Desk", Price: 199, Image: "http://x/img.png"}
		err := NewMongoProductRepository(mt.DB).Create(ctx, p)
		require.Error(mt, err)
		assert.False(mt, domain.IsValidationError(err))
		assert.True(mt, p.ID.IsZero())
	})

	mt.Run("update returns the modified document", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: productDoc(id, "Desk", 149, "http://x/img.png")},
		})

		p, err := NewMongoProductRepository(mt.DB).Update(ctx, id, domain.ProductFields{Price: floatPtr(149)})
		require.NoError(mt, err)
		assert.Equal(mt, id, p.ID)
		assert.Equal(mt, 149.0, p.Price)
		assert.Equal(mt, "Desk", p.Name)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "findAndModify", evt.CommandName)
	})

	mt.Run("update of unknown id is not found", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}})

		_, err := NewMongoProductRepository(mt.DB).Update(ctx, primitive.NewObjectID(), domain.ProductFields{Price: floatPtr(1)})
		assert.ErrorIs(mt, err, ErrProductNotFound)
	})

	mt.Run("update validates present fields before querying", func(mt *mtest.T) {
		_, err := NewMongoProductRepository(mt.DB).Update(ctx, primitive.NewObjectID(), domain.ProductFields{Name: strPtr("")})
		require.Error(mt, err)
		assert.True(mt, domain.IsValidationError(err))
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("delete returns the removed document", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: productDoc(id, "Desk", 199, "http://x/img.png")},
		})

		p, err := NewMongoProductRepository(mt.DB).Delete(ctx, id)
		require.NoError(mt, err)
		assert.Equal(mt, id, p.ID)
	})

	mt.Run("delete of unknown id is not found", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}})

		_, err := NewMongoProductRepository(mt.DB).Delete(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrProductNotFound)
	})
}
