package constants

// 订单状态常量（物流侧）
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// 支付状态常量
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// 配送方式常量
const (
	ShippingMethodStandard = "standard"
	ShippingMethodExpress  = "express"
)

// 配送费用常量（站点货币最小单位，整数金额）
const (
	ShippingCostStandard = 30000
	ShippingCostExpress  = 50000
)

// 支付回调结果常量
const (
	CallbackResultSuccess = "success"
	CallbackResultFailed  = "failed"
)

// 队列与任务名称常量
const (
	QueueDefault         = "default"
	TaskOrderStatusEmail = "order:status_email"
)

// 站点货币默认值
const SiteCurrencyDefault = "IRT"
