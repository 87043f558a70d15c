package public

import (
	"strconv"
	"strings"

	"github.com/tarano297/pocopini2/internal/constants"
	"github.com/tarano297/pocopini2/internal/http/response"
	"github.com/tarano297/pocopini2/internal/service"

	"github.com/gin-gonic/gin"
)

// CreatePaymentToken 为订单发起支付
func (h *Handler) CreatePaymentToken(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "invalid order id", nil)
		return
	}
	result, err := h.PaymentService.CreatePaymentToken(uid, uint(orderID))
	if err != nil {
		respondWithMappedError(c, err, paymentTokenErrorRules, response.CodeInternal, "payment token create failed")
		return
	}
	response.Success(c, result)
}

// PaymentCallback 网关回调入口。网关以表单或查询参数回传
// token、ref_id 与 status 结果标识（兼容旧网关的 result 字段）。
func (h *Handler) PaymentCallback(c *gin.Context) {
	token := callbackField(c, "token")
	result := callbackField(c, "status")
	if result == "" {
		result = callbackField(c, "result")
	}
	refID := callbackField(c, "ref_id")
	if result == "" {
		result = constants.CallbackResultFailed
	}

	order, err := h.PaymentService.HandleCallback(c.Request.Context(), service.CallbackInput{
		Token:  token,
		Result: result,
		RefID:  refID,
	})
	if err != nil {
		respondWithMappedError(c, err, paymentCallbackErrorRules, response.CodeInternal, "payment callback failed")
		return
	}
	response.Success(c, gin.H{
		"order_no":       order.OrderNo,
		"status":         order.Status,
		"payment_status": order.PaymentStatus,
	})
}

func callbackField(c *gin.Context, name string) string {
	value := strings.TrimSpace(c.PostForm(name))
	if value == "" {
		value = strings.TrimSpace(c.Query(name))
	}
	return value
}
