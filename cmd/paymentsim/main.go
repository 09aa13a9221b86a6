package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"shop_backend/internal/gateway"
)

// Result 记录单次请求的 HTTP 结果，便于聚合统计。
type Result struct {
	Status int
	Body   string
	Err    error
}

// paymentsim 在本地部署上跑通整条支付链路：
// 建商品 → 建购物车 → 建单 → 本地计算签名 → capture。
// 需要知道部署的网关 secret（dev 环境默认值即可），所以只适合联调，不适合生产。
func main() {
	baseURL := flag.String("base", "http://localhost:8080", "server base url")
	secret := flag.String("secret", "dev-gateway-secret", "gateway secret used by the deployment")
	userID := flag.String("user", "sim-user-1", "user id")
	stock := flag.Int64("stock", 5, "seeded product stock")
	quantity := flag.Int("quantity", 1, "ordered quantity")

	// 重复 capture 测试参数：同一订单并发回调 N 次，只应成功一次
	nCaptures := flag.Int("captures", 20, "concurrent captures of the same order")
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}

	productID, price, err := seedProduct(client, *baseURL, *stock)
	if err != nil {
		panic(fmt.Sprintf("seed product failed: %v", err))
	}
	fmt.Printf("seeded product id=%d stock=%d\n", productID, *stock)

	cartID, err := seedCart(client, *baseURL, *userID, productID, price, *quantity)
	if err != nil {
		panic(fmt.Sprintf("seed cart failed: %v", err))
	}

	orderID, gatewayOrderID, err := createOrder(client, *baseURL, *userID, cartID, productID, price, *quantity)
	if err != nil {
		panic(fmt.Sprintf("create order failed: %v", err))
	}
	fmt.Printf("order created id=%d gateway_order=%s\n", orderID, gatewayOrderID)

	// 本地按网关约定算签名，模拟真实回调
	paymentID := fmt.Sprintf("pay_sim_%d", time.Now().UnixMilli())
	signature := gateway.Signature(*secret, gatewayOrderID, paymentID)

	fmt.Printf("start duplicate-capture test: order=%d captures=%d\n", orderID, *nCaptures)
	results := runCaptures(client, *baseURL, orderID, gatewayOrderID, paymentID, signature, *nCaptures)
	printSummary("duplicate_capture", results)

	// 伪造签名测试：应全部 400 且不动任何状态
	badSig := gateway.Signature(*secret+"-wrong", gatewayOrderID, paymentID)
	results2 := runCaptures(client, *baseURL, orderID, gatewayOrderID, paymentID, badSig, 5)
	printSummary("forged_signature", results2)

	status, body, err := doGET(client, fmt.Sprintf("%s/api/shop/order/details/%d", *baseURL, orderID))
	if err != nil {
		fmt.Println("details err:", err)
		return
	}
	fmt.Printf("final order state (%d): %s\n", status, body)
}

func seedProduct(client *http.Client, baseURL string, stock int64) (uint, float64, error) {
	price := 250.0
	body := map[string]any{
		"title":      "sim-widget",
		"image":      "https://example.com/widget.png",
		"price":      price,
		"totalStock": stock,
	}
	var out struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	if err := postJSON(client, baseURL+"/api/products", body, &out); err != nil {
		return 0, 0, err
	}
	return out.Data.ID, price, nil
}

func seedCart(client *http.Client, baseURL, userID string, productID uint, price float64, quantity int) (string, error) {
	body := map[string]any{
		"userId": userID,
		"items": []map[string]any{
			{"productId": productID, "title": "sim-widget", "price": price, "quantity": quantity},
		},
	}
	var out struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := postJSON(client, baseURL+"/api/carts", body, &out); err != nil {
		return "", err
	}
	return out.Data.ID, nil
}

func createOrder(client *http.Client, baseURL, userID, cartID string, productID uint, price float64, quantity int) (uint, string, error) {
	body := map[string]any{
		"userId": userID,
		"cartId": cartID,
		"cartItems": []map[string]any{
			{"productId": productID, "title": "sim-widget", "price": price, "quantity": quantity},
		},
		"addressInfo": map[string]any{
			"address": "1 Sim Street",
			"city":    "Simcity",
			"pincode": "000001",
			"phone":   "0000000000",
		},
		"totalAmount": price * float64(quantity),
	}
	var out struct {
		Order struct {
			ID             uint   `json:"id"`
			GatewayOrderID string `json:"gatewayOrderId"`
		} `json:"order"`
	}
	if err := postJSON(client, baseURL+"/api/shop/order/create", body, &out); err != nil {
		return 0, "", err
	}
	return out.Order.ID, out.Order.GatewayOrderID, nil
}

func runCaptures(client *http.Client, baseURL string, orderID uint, gatewayOrderID, paymentID, signature string, total int) []Result {
	var wg sync.WaitGroup
	results := make([]Result, total)

	for i := 0; i < total; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			body := map[string]any{
				"gatewayOrderId":   gatewayOrderID,
				"gatewayPaymentId": paymentID,
				"gatewaySignature": signature,
				"orderId":          orderID,
			}
			results[idx] = captureOnce(client, baseURL, body)
		}(i)
	}

	wg.Wait()
	return results
}

func captureOnce(client *http.Client, baseURL string, body any) Result {
	b, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, baseURL+"/api/shop/order/capture", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return Result{Err: err}
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	return Result{Status: resp.StatusCode, Body: string(respBody)}
}

// printSummary 聚合输出不同状态码分布。
func printSummary(name string, results []Result) {
	count := map[int]int{}
	errCount := 0
	for _, r := range results {
		if r.Err != nil {
			errCount++
			continue
		}
		count[r.Status]++
	}
	fmt.Printf("[%s] http status summary:\n", name)
	for _, code := range []int{200, 400, 404, 429, 500} {
		if count[code] > 0 {
			fmt.Printf("  %d -> %d\n", code, count[code])
		}
	}
	if errCount > 0 {
		fmt.Printf("  errors -> %d\n", errCount)
	}
}

// postJSON 发送 POST 并解析 2xx 响应体。
func postJSON(client *http.Client, url string, body any, out any) error {
	b, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(respBody))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(respBody, out)
}

func doGET(client *http.Client, url string) (int, string, error) {
	resp, err := client.Get(url)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b), nil
}
