package sep

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrConfigInvalid   = errors.New("sep config invalid")
	ErrRequestFailed   = errors.New("sep request failed")
	ErrResponseInvalid = errors.New("sep response invalid")
	ErrVerifyRejected  = errors.New("sep verify rejected")
)

// Config 支付网关配置
type Config struct {
	GatewayURL  string        // 网关跳转地址
	VerifyURL   string        // 支付校验接口地址
	CallbackURL string        // 回调地址（下发给网关）
	Timeout     time.Duration // 单次校验超时
	MaxRetries  int           // 网络错误重试次数
}

// VerifyResult 支付校验结果
type VerifyResult struct {
	Succeed bool
	RefID   string
	Amount  string
	Raw     map[string]interface{}
}

// ValidateConfig 校验网关配置完整性
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.GatewayURL) == "" {
		return fmt.Errorf("%w: gateway_url is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.VerifyURL) == "" {
		return fmt.Errorf("%w: verify_url is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.CallbackURL) == "" {
		return fmt.Errorf("%w: callback_url is required", ErrConfigInvalid)
	}
	return nil
}

// GenerateToken 生成支付令牌。掺入随机 UUID，同一订单反复
// 发起支付会得到不同令牌。
func GenerateToken(orderID uint, amount string) string {
	seed := fmt.Sprintf("%d:%s:%s", orderID, amount, uuid.NewString())
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])
}

// PaymentURL 构造网关跳转地址
func PaymentURL(cfg *Config, token, amount string) (string, error) {
	if err := ValidateConfig(cfg); err != nil {
		return "", err
	}
	base, err := url.Parse(cfg.GatewayURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	query := base.Query()
	query.Set("token", token)
	query.Set("amount", amount)
	query.Set("redirect_url", cfg.CallbackURL)
	base.RawQuery = query.Encode()
	return base.String(), nil
}

// Verify 向网关核验支付。仅传输层错误触发重试，网关明确
// 拒绝立即返回。
func Verify(ctx context.Context, cfg *Config, token, refID string) (*VerifyResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	attempts := cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
		result, err := verifyOnce(ctx, cfg, token, refID)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, ErrRequestFailed) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func verifyOnce(ctx context.Context, cfg *Config, token, refID string) (*VerifyResult, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := postForm(reqCtx, cfg.VerifyURL, map[string]string{
		"token":  token,
		"ref_id": refID,
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		State  string `json:"state"`
		RefID  string `json:"ref_id"`
		Amount string `json:"amount"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	var raw map[string]interface{}
	_ = json.Unmarshal(body, &raw)

	result := &VerifyResult{
		RefID:  payload.RefID,
		Amount: payload.Amount,
		Raw:    raw,
	}
	if !strings.EqualFold(payload.State, "ok") {
		return result, fmt.Errorf("%w: state=%s", ErrVerifyRejected, payload.State)
	}
	result.Succeed = true
	return result, nil
}

func postForm(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	values := url.Values{}
	for key, value := range params {
		values.Set(key, value)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrResponseInvalid, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	return body, nil
}
