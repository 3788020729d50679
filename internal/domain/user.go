package domain

// UserRole роль пользователя
type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

// User owned by the auth component; this service only reads it and stores
// the payment provider customer reference
type User struct {
	ID                       int64
	Email                    string
	Role                     UserRole
	IsGuest                  bool
	PaymentCustomerReference *string
}

// HasPaymentCustomer returns true if a provider customer is linked
func (u *User) HasPaymentCustomer() bool {
	return u.PaymentCustomerReference != nil && *u.PaymentCustomerReference != ""
}
