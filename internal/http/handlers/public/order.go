package public

import (
	"strconv"

	handlershared "github.com/tarano297/pocopini2/internal/http/handlers/shared"
	"github.com/tarano297/pocopini2/internal/http/response"
	"github.com/tarano297/pocopini2/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	AddressID      uint   `json:"address_id" binding:"required"`
	ShippingMethod string `json:"shipping_method" binding:"required"`
}

// CreateOrder 从购物车创建订单
func (h *Handler) CreateOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	order, err := h.OrderService.CreateOrder(service.CreateOrderInput{
		UserID:         uid,
		AddressID:      req.AddressID,
		ShippingMethod: req.ShippingMethod,
	})
	if err != nil {
		respondWithMappedError(c, err, orderCreateErrorRules, response.CodeInternal, "order create failed")
		return
	}
	response.Created(c, order)
}

// ListOrders 用户订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	orders, total, err := h.OrderService.ListOrders(uid, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "order list failed", err)
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}

// GetOrder 订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "invalid order id", nil)
		return
	}
	order, err := h.OrderService.GetOrder(uid, uint(orderID))
	if err != nil {
		respondWithMappedError(c, err, orderAccessErrorRules, response.CodeInternal, "order fetch failed")
		return
	}
	response.Success(c, order)
}

// CancelOrder 取消订单
func (h *Handler) CancelOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "invalid order id", nil)
		return
	}
	order, err := h.OrderService.CancelOrder(uid, uint(orderID))
	if err != nil {
		respondWithMappedError(c, err, orderCancelErrorRules, response.CodeInternal, "order cancel failed")
		return
	}
	response.Success(c, order)
}
