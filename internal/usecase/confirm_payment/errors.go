package confirm_payment

import "errors"

// ErrInternal возвращается при ошибках хранилища; уведомление можно доставить повторно
var ErrInternal = errors.New("confirm_payment: internal error")
