package service

import "github.com/tarano297/pocopini2/internal/constants"

// allowedTransitions 订单物流状态机。空集合表示终态。
var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusProcessing: true,
		constants.OrderStatusCancelled:  true,
	},
	constants.OrderStatusProcessing: {
		constants.OrderStatusShipped:   true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusShipped: {
		constants.OrderStatusDelivered: true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusDelivered: {},
	constants.OrderStatusCancelled: {},
}

// allowedPaymentTransitions 支付状态机，与物流状态机相互独立
var allowedPaymentTransitions = map[string]map[string]bool{
	constants.PaymentStatusPending: {
		constants.PaymentStatusPaid:   true,
		constants.PaymentStatusFailed: true,
	},
	constants.PaymentStatusFailed: {
		constants.PaymentStatusPaid: true,
	},
	constants.PaymentStatusPaid: {
		constants.PaymentStatusRefunded: true,
	},
	constants.PaymentStatusRefunded: {},
}

// CanTransition 判断订单状态是否允许从 current 迁移到 target
func CanTransition(current, target string) bool {
	nexts, ok := allowedTransitions[current]
	if !ok {
		return false
	}
	return nexts[target]
}

// CanTransitionPayment 判断支付状态是否允许迁移
func CanTransitionPayment(current, target string) bool {
	nexts, ok := allowedPaymentTransitions[current]
	if !ok {
		return false
	}
	return nexts[target]
}

// IsTerminalStatus 判断订单状态是否为终态
func IsTerminalStatus(status string) bool {
	nexts, ok := allowedTransitions[status]
	return ok && len(nexts) == 0
}
