package logger

import (
	"log/slog"
	"time"
)

// Error records err under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// CustomerID records the billing customer identifier under the key "customer_id".
// If id is empty, it returns an empty Attr.
func CustomerID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("customer_id", id)
}

// SubscriptionID records the subscription identifier under the key "subscription_id".
// If id is empty, it returns an empty Attr.
func SubscriptionID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("subscription_id", id)
}

// Operation records the billing operation name under the key "operation".
func Operation(name string) slog.Attr {
	return slog.String("operation", name)
}

// Status records a subscription status under the key "status".
func Status(status string) slog.Attr {
	return slog.String("status", status)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Duration records d under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
