package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signature 计算回调验签串：hex(HMAC-SHA256(secret, "orderID|paymentID"))。
// 这是网关侧约定的线上格式，不可改动。
func Signature(secret, gatewayOrderID, gatewayPaymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature 常数时间比较回调签名。
func VerifySignature(secret, gatewayOrderID, gatewayPaymentID, supplied string) bool {
	expected := Signature(secret, gatewayOrderID, gatewayPaymentID)
	return hmac.Equal([]byte(expected), []byte(supplied))
}
