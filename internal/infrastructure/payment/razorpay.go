package payment

import (
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"

	"lingoplatform/internal/domain"
)

// Gateway — обертка над Razorpay. Ядро использует только id ордера,
// булев результат проверки подписи и строку статуса платежа.
type Gateway struct {
	client *razorpay.Client
	secret string
}

func NewGateway(keyID, keySecret string) *Gateway {
	return &Gateway{
		client: razorpay.NewClient(keyID, keySecret),
		secret: keySecret,
	}
}

// CreateOrder создает ордер на amount в минорных единицах (пайсах).
func (g *Gateway) CreateOrder(amount int, currency string, notes map[string]interface{}) (string, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"notes":    notes,
	}
	order, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("%w: razorpay order: %v", domain.ErrExternalService, err)
	}
	id, ok := order["id"].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("%w: razorpay order: no id in response", domain.ErrExternalService)
	}
	return id, nil
}

// VerifySignature проверяет HMAC подпись callback'а оплаты.
func (g *Gateway) VerifySignature(orderID, paymentID, signature string) bool {
	params := map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}
	return utils.VerifyPaymentSignature(params, signature, g.secret)
}

// FetchPayment возвращает статус платежа ("captured", "failed", ...).
func (g *Gateway) FetchPayment(paymentID string) (string, error) {
	p, err := g.client.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		return "", fmt.Errorf("%w: razorpay payment fetch: %v", domain.ErrExternalService, err)
	}
	status, _ := p["status"].(string)
	return status, nil
}
