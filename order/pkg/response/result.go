package response

// Code tags every checkout outcome; each failure mode is a distinct
// code rather than a generic error.
type Code string

const (
	CodeOK                      Code = "OK"
	CodeMissingUser             Code = "MISSING_USER"
	CodeEmptySelection          Code = "EMPTY_SELECTION"
	CodeNoResolvableItems       Code = "NO_RESOLVABLE_ITEMS"
	CodeMissingProductReference Code = "MISSING_PRODUCT_REFERENCE"
	CodeProductNotFound         Code = "PRODUCT_NOT_FOUND"
	CodeInsufficientStock       Code = "INSUFFICIENT_STOCK"
	CodeSystemError             Code = "SYSTEM_ERROR"
)

// CheckoutResult is the tagged outcome of a checkout attempt. Order is
// set only when Code is CodeOK.
type CheckoutResult struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Order   *Order `json:"order,omitempty"`
}

func (r CheckoutResult) Success() bool {
	return r.Code == CodeOK
}

func Failure(code Code, message string) CheckoutResult {
	return CheckoutResult{Code: code, Message: message}
}

func Success(order Order) CheckoutResult {
	return CheckoutResult{Code: CodeOK, Message: "checkout accepted", Order: &order}
}
