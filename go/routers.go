// Package posserver is the HTTP terminal API of the point-of-sale core.
package posserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
	// Public routes skip token authentication.
	Public bool
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		handlers := []gin.HandlerFunc{route.HandlerFunc}
		if !route.Public && handleFunctions.Auth != nil {
			handlers = append([]gin.HandlerFunc{handleFunctions.Auth.Middleware()}, handlers...)
		}
		router.Handle(route.Method, route.Pattern, handlers...)
	}
	return router
}

// DefaultHandleFunc is the default handler for routes without one.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

type ApiHandleFunctions struct {
	Auth *Authenticator

	SessionAPI SessionAPI
	CatalogAPI CatalogAPI
	OrderAPI   OrderAPI
	AdminAPI   AdminAPI
	HealthAPI  HealthAPI
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{"Healthz", http.MethodGet, "/healthz", handleFunctions.HealthAPI.Healthz, true},

		{"SignIn", http.MethodPost, "/v1/sessions", handleFunctions.SessionAPI.SignIn, true},
		{"SignOut", http.MethodDelete, "/v1/sessions/current", handleFunctions.SessionAPI.SignOut, false},
		{"UnlockAdmin", http.MethodPost, "/v1/sessions/current/admin", handleFunctions.SessionAPI.UnlockAdmin, false},
		{"LockAdmin", http.MethodDelete, "/v1/sessions/current/admin", handleFunctions.SessionAPI.LockAdmin, false},

		{"ListCatalog", http.MethodGet, "/v1/catalog", handleFunctions.CatalogAPI.ListCatalog, false},
		{"GetSettings", http.MethodGet, "/v1/settings", handleFunctions.CatalogAPI.GetSettings, false},

		{"GetOrder", http.MethodGet, "/v1/order", handleFunctions.OrderAPI.GetOrder, false},
		{"StreamOrder", http.MethodGet, "/v1/order/events", handleFunctions.OrderAPI.StreamOrder, false},
		{"ClearOrder", http.MethodDelete, "/v1/order", handleFunctions.OrderAPI.ClearOrder, false},
		{"AddItem", http.MethodPost, "/v1/order/items", handleFunctions.OrderAPI.AddItem, false},
		{"ChangeQuantity", http.MethodPatch, "/v1/order/items/:itemId", handleFunctions.OrderAPI.ChangeQuantity, false},
		{"RemoveItem", http.MethodDelete, "/v1/order/items/:itemId", handleFunctions.OrderAPI.RemoveItem, false},
		{"SetDiscount", http.MethodPut, "/v1/order/discount", handleFunctions.OrderAPI.SetDiscount, false},
		{"Checkout", http.MethodPost, "/v1/order/checkout", handleFunctions.OrderAPI.Checkout, false},

		{"CreateItem", http.MethodPost, "/v1/admin/items", handleFunctions.AdminAPI.CreateItem, false},
		{"UpdateItem", http.MethodPatch, "/v1/admin/items/:itemId", handleFunctions.AdminAPI.UpdateItem, false},
		{"DeleteItem", http.MethodDelete, "/v1/admin/items/:itemId", handleFunctions.AdminAPI.DeleteItem, false},
		{"CreateEmployee", http.MethodPost, "/v1/admin/employees", handleFunctions.AdminAPI.CreateEmployee, false},
		{"UpdateEmployee", http.MethodPatch, "/v1/admin/employees/:employeeId", handleFunctions.AdminAPI.UpdateEmployee, false},
		{"DeleteEmployee", http.MethodDelete, "/v1/admin/employees/:employeeId", handleFunctions.AdminAPI.DeleteEmployee, false},
		{"UpdateSettings", http.MethodPatch, "/v1/admin/settings", handleFunctions.AdminAPI.UpdateSettings, false},
		{"ListConfirmations", http.MethodGet, "/v1/admin/confirmations", handleFunctions.AdminAPI.ListConfirmations, false},
		{"Confirm", http.MethodPost, "/v1/admin/confirmations/:token", handleFunctions.AdminAPI.Confirm, false},
		{"Cancel", http.MethodDelete, "/v1/admin/confirmations/:token", handleFunctions.AdminAPI.Cancel, false},
	}
}
