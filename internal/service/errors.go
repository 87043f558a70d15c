package service

import "errors"

// 业务错误定义，处理器层通过 errors.Is 映射为响应码
var (
	ErrInvalidQuantity     = errors.New("quantity must be positive")
	ErrProductNotAvailable = errors.New("product not available")
	ErrOutOfStock          = errors.New("insufficient stock")
	ErrCartEmpty           = errors.New("cart is empty")
	ErrCartItemNotFound    = errors.New("cart item not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderForbidden      = errors.New("order does not belong to user")
	ErrOrderStateInvalid   = errors.New("invalid order state transition")
	ErrOrderAlreadyPaid    = errors.New("order already paid")
	ErrOrderNotCancellable = errors.New("order cannot be cancelled")
	ErrAddressNotFound     = errors.New("address not found")
	ErrAddressInvalid      = errors.New("address fields incomplete")
	ErrAddressNotOwned     = errors.New("address does not belong to user")
	ErrShippingMethod      = errors.New("unknown shipping method")
	ErrPaymentVerifyFailed = errors.New("payment verification failed")
	ErrPaymentTokenInvalid = errors.New("payment token not recognized")

	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrInvalidEmail              = errors.New("invalid email address")
)
