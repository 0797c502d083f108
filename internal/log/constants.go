package log

const (
	KeyAppName       = "app"
	KeyCacheKey      = "cacheKey"
	KeyCartLines     = "cartLines"
	KeyConfig        = "config"
	KeyEmail         = "email"
	KeyOrder         = "order"
	KeyOrderID       = "orderId"
	KeyOrderItems    = "orderItems"
	KeyProcess       = "process"
	KeyProduct       = "product"
	KeyProductID     = "productId"
	KeyProducts      = "products"
	KeyRequestBody   = "requestBody"
	KeyRequestHost   = "host"
	KeyRequestID     = "requestId"
	KeyRequestIp     = "requesterIP"
	KeyRequestMethod = "requestMethod"
	KeyRequestURI    = "requestURI"
	KeyRequestURL    = "requestURL"
	KeyResultCode    = "resultCode"
	KeyTag           = "tag"
	KeyUserID        = "userId"
)
