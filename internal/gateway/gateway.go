package gateway

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// OrderInput 是网关建单请求。金额必须已换算为最小货币单位。
type OrderInput struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

// OrderResult 保留网关返回的订单 ID 与原始 payload（原样透传给前端收银台）。
type OrderResult struct {
	ID  string
	Raw map[string]interface{}
}

// Client 抽象支付网关建单能力，便于测试替换。
type Client interface {
	CreateOrder(ctx context.Context, in OrderInput) (OrderResult, error)
}

// Razorpay 是官方 SDK 的薄封装。
type Razorpay struct {
	api *razorpay.Client
}

func NewRazorpay(keyID, keySecret string) *Razorpay {
	return &Razorpay{api: razorpay.NewClient(keyID, keySecret)}
}

// CreateOrder 调网关创建远端订单。
// SDK 自身不接收 context，这里保留 ctx 只为满足接口形状。
func (r *Razorpay) CreateOrder(ctx context.Context, in OrderInput) (OrderResult, error) {
	data := map[string]interface{}{
		"amount":          in.AmountMinor,
		"currency":        in.Currency,
		"receipt":         in.Receipt,
		"payment_capture": 1,
		"notes":           in.Notes,
	}

	body, err := r.api.Order.Create(data, nil)
	if err != nil {
		return OrderResult{}, err
	}

	id, _ := body["id"].(string)
	if id == "" {
		return OrderResult{}, fmt.Errorf("gateway response missing order id")
	}
	return OrderResult{ID: id, Raw: body}, nil
}
