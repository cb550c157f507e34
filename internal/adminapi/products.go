package adminapi

import (
	"math"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/talkincode/productapi/internal/domain"
	"github.com/talkincode/productapi/internal/events"
	"github.com/talkincode/productapi/internal/repository"
	"github.com/talkincode/productapi/internal/webserver"
)

// registerProductRoutes registers product CRUD endpoints under /api/products
func registerProductRoutes() {
	webserver.ApiGET("/products", listProducts)
	webserver.ApiPOST("/products", createProduct)
	webserver.ApiPUT("/products/:id", updateProduct)
	webserver.ApiDELETE("/products/:id", deleteProduct)
}

func listProducts(c echo.Context) error {
	products, err := GetProductRepo(c).List(c.Request().Context())
	if err != nil {
		return storageError(c, "Error in Get Products", err)
	}
	return ok(c, products)
}

func createProduct(c echo.Context) error {
	payload, err := bindPayload(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	// all three fields must be truthy before storage is touched
	if isFalsy(payload["name"]) || isFalsy(payload["price"]) || isFalsy(payload["image"]) {
		return fail(c, http.StatusBadRequest, "Name, price, and image are required")
	}

	fields, err := domain.ParseProductFields(payload)
	if err != nil {
		return storageError(c, "Error in Create Product", err)
	}
	product := domain.NewProduct(fields)
	if err := GetProductRepo(c).Create(c.Request().Context(), product); err != nil {
		return storageError(c, "Error in Create Product", err)
	}

	publishProductEvent(c, events.TypeProductCreated, product)
	return created(c, product, "Product added successfully")
}

func updateProduct(c echo.Context) error {
	id, err := parseProductID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid ID")
	}

	payload, err := bindPayload(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	fields, err := domain.ParseProductFields(payload)
	if err != nil {
		return storageError(c, "Error in Update Product", err)
	}

	product, err := GetProductRepo(c).Update(c.Request().Context(), id, fields)
	if err != nil {
		return storageError(c, "Error in Update Product", err)
	}

	publishProductEvent(c, events.TypeProductUpdated, product)
	return ok(c, product)
}

func deleteProduct(c echo.Context) error {
	id, err := parseProductID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid ID")
	}

	product, err := GetProductRepo(c).Delete(c.Request().Context(), id)
	if err != nil {
		return storageError(c, "Error in Delete Product", err)
	}

	publishProductEvent(c, events.TypeProductDeleted, product)
	return okMessage(c, "Product deleted successfully")
}

func parseProductID(c echo.Context) (primitive.ObjectID, error) {
	return domain.ParseProductID(c.Param("id"))
}

// bindPayload decodes the request body into a generic map; an empty body yields an empty map
func bindPayload(c echo.Context) (map[string]interface{}, error) {
	payload := map[string]interface{}{}
	if err := (&echo.DefaultBinder{}).BindBody(c, &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		payload = map[string]interface{}{}
	}
	return payload, nil
}

// isFalsy reports whether a decoded JSON value is absent, null, false, zero or empty
func isFalsy(v interface{}) bool {
	switch tv := v.(type) {
	case nil:
		return true
	case bool:
		return !tv
	case string:
		return tv == ""
	case float64:
		return tv == 0 || math.IsNaN(tv)
	}
	return false
}

// storageError maps a storage failure onto the response taxonomy
func storageError(c echo.Context, op string, err error) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		zap.L().Info(op, zap.String("namespace", "api"), zap.String("reason", verr.Error()))
		return fail(c, http.StatusBadRequest, verr.Error())
	case errors.Is(err, repository.ErrProductNotFound):
		return fail(c, http.StatusNotFound, "Product not found")
	}
	zap.L().Error(op, zap.String("namespace", "api"), zap.Error(err))
	return fail(c, http.StatusInternalServerError, msgServerError)
}

func publishProductEvent(c echo.Context, eventType string, p *domain.Product) {
	evt := events.NewProductEvent(eventType, p)
	if err := GetPublisher(c).Publish(c.Request().Context(), evt); err != nil {
		zap.L().Warn("publish product event failed",
			zap.String("namespace", "api"),
			zap.String("type", eventType),
			zap.String("product_id", evt.ProductID),
			zap.Error(err))
	}
}
