package constants

const (
	AppMain           = "storefront"
	AppUserService    = "storefront-user"
	AppProductService = "storefront-product"
	AppCartService    = "storefront-cart"
	AppOrderService   = "storefront-order"
	AudienceUser      = "storefront-user"

	RoleUser  = "User"
	RoleStaff = "Staff"
	RoleAdmin = "Admin"

	OrderStatusPending   = "PENDING"
	OrderStatusPaid      = "PAID"
	OrderStatusCancelled = "CANCELLED"
)
