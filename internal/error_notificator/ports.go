package error_notificator

import "context"

type Notificator interface {
	// Notify — сообщает админу об ошибке. Ошибка доставки уже залогирована.
	Notify(ctx context.Context, err error, details string) error
}

// AdminSender — транспорт до админского чата.
type AdminSender interface {
	SendAdmin(ctx context.Context, text string) error
}
