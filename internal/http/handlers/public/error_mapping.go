package public

import (
	"errors"

	"github.com/tarano297/pocopini2/internal/http/response"
	"github.com/tarano297/pocopini2/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidQuantity, code: response.CodeBadRequest, msg: "quantity must be positive"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, msg: "product not available"},
	{target: service.ErrOutOfStock, code: response.CodeConflict, msg: "product out of stock"},
	{target: service.ErrCartItemNotFound, code: response.CodeNotFound, msg: "cart item not found"},
}

var orderCreateErrorRules = []mappedHandlerError{
	{target: service.ErrCartEmpty, code: response.CodeBadRequest, msg: "cart is empty"},
	{target: service.ErrInvalidQuantity, code: response.CodeBadRequest, msg: "quantity must be positive"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, msg: "product not available"},
	{target: service.ErrOutOfStock, code: response.CodeConflict, msg: "insufficient stock"},
	{target: service.ErrShippingMethod, code: response.CodeBadRequest, msg: "unknown shipping method"},
	{target: service.ErrAddressNotOwned, code: response.CodeForbidden, msg: "address does not belong to user"},
}

var orderAccessErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
	{target: service.ErrOrderForbidden, code: response.CodeForbidden, msg: "order does not belong to user"},
}

var orderCancelErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
	{target: service.ErrOrderForbidden, code: response.CodeForbidden, msg: "order does not belong to user"},
	{target: service.ErrOrderNotCancellable, code: response.CodeConflict, msg: "order cannot be cancelled"},
}

var paymentTokenErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
	{target: service.ErrOrderForbidden, code: response.CodeForbidden, msg: "order does not belong to user"},
	{target: service.ErrOrderAlreadyPaid, code: response.CodeBadRequest, msg: "order already paid"},
	{target: service.ErrOrderStateInvalid, code: response.CodeConflict, msg: "order state does not allow payment"},
}

var paymentCallbackErrorRules = []mappedHandlerError{
	{target: service.ErrPaymentTokenInvalid, code: response.CodeNotFound, msg: "payment token not recognized"},
	{target: service.ErrPaymentVerifyFailed, code: response.CodeBadRequest, msg: "payment verification failed"},
}

var addressErrorRules = []mappedHandlerError{
	{target: service.ErrAddressNotFound, code: response.CodeNotFound, msg: "address not found"},
	{target: service.ErrAddressInvalid, code: response.CodeBadRequest, msg: "address fields incomplete"},
}

var authErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidCredentials, code: response.CodeUnauthorized, msg: "invalid credentials"},
	{target: service.ErrEmailTaken, code: response.CodeConflict, msg: "email already registered"},
}
