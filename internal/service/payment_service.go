package service

import (
	"context"
	"errors"
	"time"

	"github.com/tarano297/pocopini2/internal/config"
	"github.com/tarano297/pocopini2/internal/constants"
	"github.com/tarano297/pocopini2/internal/logger"
	"github.com/tarano297/pocopini2/internal/models"
	"github.com/tarano297/pocopini2/internal/payment/sep"
	"github.com/tarano297/pocopini2/internal/queue"
	"github.com/tarano297/pocopini2/internal/repository"

	"gorm.io/gorm"
)

// PaymentTokenResult 发起支付结果
type PaymentTokenResult struct {
	OrderNo    string       `json:"order_no"`
	Token      string       `json:"token"`
	PaymentURL string       `json:"payment_url"`
	Amount     models.Money `json:"amount"`
}

// CallbackInput 支付回调输入
type CallbackInput struct {
	Token  string
	Result string
	RefID  string
}

// PaymentService 支付服务，封装网关交互与回调对账
type PaymentService struct {
	db          *gorm.DB
	orderRepo   repository.OrderRepository
	queueClient *queue.Client
	gatewayCfg  *sep.Config
}

// NewPaymentService 创建支付服务
func NewPaymentService(db *gorm.DB, orderRepo repository.OrderRepository, queueClient *queue.Client, cfg *config.PaymentConfig) *PaymentService {
	gatewayCfg := &sep.Config{}
	if cfg != nil {
		gatewayCfg = &sep.Config{
			GatewayURL:  cfg.GatewayURL,
			VerifyURL:   cfg.VerifyURL,
			CallbackURL: cfg.CallbackURL,
			Timeout:     time.Duration(cfg.VerifyTimeoutMS) * time.Millisecond,
			MaxRetries:  cfg.VerifyMaxRetries,
		}
	}
	return &PaymentService{
		db:          db,
		orderRepo:   orderRepo,
		queueClient: queueClient,
		gatewayCfg:  gatewayCfg,
	}
}

// CreatePaymentToken 为订单生成支付令牌并返回网关跳转地址。
// 重复调用会覆盖旧令牌，旧令牌随之失效。
func (s *PaymentService) CreatePaymentToken(userID, orderID uint) (*PaymentTokenResult, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != userID {
		return nil, ErrOrderForbidden
	}
	if order.PaymentStatus == constants.PaymentStatusPaid {
		return nil, ErrOrderAlreadyPaid
	}
	if order.Status == constants.OrderStatusCancelled {
		return nil, ErrOrderStateInvalid
	}

	token := sep.GenerateToken(order.ID, order.TotalPrice.String())
	paymentURL, err := sep.PaymentURL(s.gatewayCfg, token, order.TotalPrice.String())
	if err != nil {
		return nil, err
	}

	order.PaymentToken = token
	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}

	logger.Infow("payment_token_created",
		"order_id", order.ID,
		"order_no", order.OrderNo,
	)
	return &PaymentTokenResult{
		OrderNo:    order.OrderNo,
		Token:      token,
		PaymentURL: paymentURL,
		Amount:     order.TotalPrice,
	}, nil
}

// HandleCallback 处理网关回调并对账。幂等：已支付订单的重复
// 回调直接返回成功，不再触达网关。
func (s *PaymentService) HandleCallback(ctx context.Context, input CallbackInput) (*models.Order, error) {
	if input.Token == "" {
		return nil, ErrPaymentTokenInvalid
	}
	order, err := s.orderRepo.GetByPaymentToken(input.Token)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrPaymentTokenInvalid
	}
	if order.PaymentStatus == constants.PaymentStatusPaid {
		logger.Infow("payment_callback_duplicate",
			"order_id", order.ID,
			"order_no", order.OrderNo,
		)
		return order, nil
	}

	if input.Result != constants.CallbackResultSuccess {
		return s.markFailed(order)
	}

	verify, err := sep.Verify(ctx, s.gatewayCfg, input.Token, input.RefID)
	if err != nil {
		if errors.Is(err, sep.ErrVerifyRejected) {
			logger.Warnw("payment_verify_rejected",
				"order_id", order.ID,
				"order_no", order.OrderNo,
				"ref_id", input.RefID,
			)
			if _, markErr := s.markFailed(order); markErr != nil {
				return nil, markErr
			}
			return nil, ErrPaymentVerifyFailed
		}
		logger.Errorw("payment_verify_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"error", err,
		)
		return nil, ErrPaymentVerifyFailed
	}

	if verify.Amount != "" && verify.Amount != order.TotalPrice.String() {
		logger.Warnw("payment_amount_mismatch",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"expected", order.TotalPrice.String(),
			"actual", verify.Amount,
		)
		if _, markErr := s.markFailed(order); markErr != nil {
			return nil, markErr
		}
		return nil, ErrPaymentVerifyFailed
	}

	now := time.Now()
	refID := verify.RefID
	if refID == "" {
		refID = input.RefID
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		current, err := orderRepo.GetByID(order.ID)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrOrderNotFound
		}
		// 并发回调下以库内状态为准
		if current.PaymentStatus == constants.PaymentStatusPaid {
			order = current
			return nil
		}
		current.PaymentStatus = constants.PaymentStatusPaid
		current.PaymentRefID = refID
		current.PaymentDate = &now
		if CanTransition(current.Status, constants.OrderStatusProcessing) {
			current.Status = constants.OrderStatusProcessing
		}
		if err := orderRepo.Update(current); err != nil {
			return err
		}
		order = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("payment_confirmed",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"ref_id", refID,
	)
	s.notifyStatusChange(order.ID, order.Status)
	return order, nil
}

func (s *PaymentService) markFailed(order *models.Order) (*models.Order, error) {
	if !CanTransitionPayment(order.PaymentStatus, constants.PaymentStatusFailed) {
		return order, nil
	}
	order.PaymentStatus = constants.PaymentStatusFailed
	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}
	logger.Infow("payment_marked_failed",
		"order_id", order.ID,
		"order_no", order.OrderNo,
	)
	return order, nil
}

// RefundOrder 管理端退款，仅已支付订单可退
func (s *PaymentService) RefundOrder(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !CanTransitionPayment(order.PaymentStatus, constants.PaymentStatusRefunded) {
		return nil, ErrOrderStateInvalid
	}
	order.PaymentStatus = constants.PaymentStatusRefunded
	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}
	logger.Infow("payment_refunded",
		"order_id", order.ID,
		"order_no", order.OrderNo,
	)
	return order, nil
}

func (s *PaymentService) notifyStatusChange(orderID uint, status string) {
	if s.queueClient == nil {
		return
	}
	if err := s.queueClient.EnqueueOrderStatusEmail(queue.OrderStatusEmailPayload{
		OrderID: orderID,
		Status:  status,
	}); err != nil {
		logger.Warnw("order_status_email_enqueue_failed",
			"order_id", orderID,
			"status", status,
			"error", err,
		)
	}
}
