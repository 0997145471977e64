package trackerserver

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
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		switch route.Method {
		case http.MethodGet:
			router.GET(route.Pattern, route.HandlerFunc)
		case http.MethodPost:
			router.POST(route.Pattern, route.HandlerFunc)
		}
	}
	return router
}

// DefaultHandleFunc answers routes without a handler.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

type ApiHandleFunctions struct {
	// Routes for the OrderAPI part of the API
	OrderAPI OrderAPI
	// Routes for the FeedAPI part of the API
	FeedAPI FeedAPI
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{
			"CreateOrder",
			http.MethodPost,
			"/api/orders",
			handleFunctions.OrderAPI.CreateOrder,
		},
		{
			"ListOrders",
			http.MethodGet,
			"/api/orders/list",
			handleFunctions.OrderAPI.ListOrders,
		},
		{
			"StreamOrders",
			http.MethodGet,
			"/api/orders/feed",
			handleFunctions.FeedAPI.StreamOrders,
		},
		{
			"GetOrder",
			http.MethodGet,
			"/api/orders/:id",
			handleFunctions.OrderAPI.GetOrder,
		},
		{
			"UpdateStatus",
			http.MethodPost,
			"/api/orders/:id/status",
			handleFunctions.OrderAPI.UpdateStatus,
		},
		{
			"GetHistory",
			http.MethodGet,
			"/api/orders/:id/history",
			handleFunctions.OrderAPI.GetHistory,
		},
		{
			"GetTransitions",
			http.MethodGet,
			"/api/orders/:id/transitions",
			handleFunctions.OrderAPI.GetTransitions,
		},
		{
			"Healthz",
			http.MethodGet,
			"/healthz",
			handleFunctions.OrderAPI.Healthz,
		},
	}
}
