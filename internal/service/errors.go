package service

import "fmt"

// 错误分类与 HTTP 映射约定：
// ValidationError/VerificationError → 400，NotFoundError → 404，
// StockError/GatewayError/PersistenceError → 500。
// router 层用 errors.As 做映射，这里只负责语义。

// ValidationError 入参缺失或非法。
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError 引用的实体不存在。
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// VerificationError 回调验证失败（订单号不匹配或签名伪造）。
type VerificationError struct {
	Message string
}

func (e *VerificationError) Error() string { return e.Message }

// StockError capture 阶段发现库存不足，带出问题商品标题。
type StockError struct {
	Title string
}

func (e *StockError) Error() string {
	return fmt.Sprintf("Stock issue for product %q", e.Title)
}

// GatewayError 网关调用失败。
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string { return "Error while creating gateway order: " + e.Err.Error() }
func (e *GatewayError) Unwrap() error { return e.Err }

// PersistenceError 底层存储失败。
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return "persistence failure: " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }
