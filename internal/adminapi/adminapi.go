package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/productapi/internal/app"
	"github.com/talkincode/productapi/internal/events"
	"github.com/talkincode/productapi/internal/repository"
	"github.com/talkincode/productapi/internal/webserver"
)

const msgServerError = "Internal Server Error"

// Init registers all admin API routes on the web server
func Init() {
	registerProductRoutes()
}

func GetAppContext(c echo.Context) app.AppContext {
	return c.Get(webserver.AppContextKey).(app.AppContext)
}

func GetProductRepo(c echo.Context) repository.ProductRepository {
	return GetAppContext(c).ProductRepo()
}

func GetPublisher(c echo.Context) events.Publisher {
	return GetAppContext(c).Publisher()
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, webserver.Response{Success: true, Data: data})
}

func created(c echo.Context, data interface{}, message string) error {
	return c.JSON(http.StatusCreated, webserver.Response{Success: true, Data: data, Message: message})
}

func okMessage(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, webserver.Response{Success: true, Message: message})
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, webserver.Response{Success: false, Message: message})
}
