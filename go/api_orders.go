package trackerserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ordermapper "github.com/Apurer/go-shipment-tracker/internal/domains/orders/adapters/http/mapper"
	orderports "github.com/Apurer/go-shipment-tracker/internal/domains/orders/ports"
	apierrors "github.com/Apurer/go-shipment-tracker/internal/shared/errors"
)

// OrderAPI wires HTTP transport with the orders bounded context service.
type OrderAPI struct {
	service   orderports.Service
	responder *apierrors.ChainedResponder
}

// NewOrderAPI creates an OrderAPI backed by the provided service.
func NewOrderAPI(service orderports.Service) OrderAPI {
	return OrderAPI{service: service, responder: NewProblemResponder()}
}

// Post /api/orders
// Create an order in the created state
func (api *OrderAPI) CreateOrder(c *gin.Context) {
	var payload ordermapper.CreateOrder
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, api.responder, err)
		return
	}
	order, err := api.service.CreateOrder(c.Request.Context(), ordermapper.ToCreateInput(payload))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ordermapper.FromDomainOrder(order))
}

// Get /api/orders/list
// List orders matching the query filter, newest first
func (api *OrderAPI) ListOrders(c *gin.Context) {
	filter, err := ordermapper.FilterFromQuery(c.Request.URL.Query())
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	orders, err := api.service.ListOrders(c.Request.Context(), filter)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDomainOrders(orders))
}

// Get /api/orders/:id
// Find order by ID
func (api *OrderAPI) GetOrder(c *gin.Context) {
	order, err := api.service.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDomainOrder(order))
}

// Post /api/orders/:id/status
// Move an order along its lifecycle
func (api *OrderAPI) UpdateStatus(c *gin.Context) {
	var payload ordermapper.StatusUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, api.responder, err)
		return
	}
	result, err := api.service.UpdateStatus(c.Request.Context(), ordermapper.ToUpdateStatusInput(c.Param("id"), payload))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromStatusUpdate(result))
}

// Get /api/orders/:id/history
// Chronological status history of an order
func (api *OrderAPI) GetHistory(c *gin.Context) {
	entries, err := api.service.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromHistory(entries))
}

// Get /api/orders/:id/transitions
// Statuses the order may move to next
func (api *OrderAPI) GetTransitions(c *gin.Context) {
	order, err := api.service.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromTransitions(order))
}

// Get /healthz
func (api *OrderAPI) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
