package errors

import "fmt"

var (
	ErrWorkerPanic          = fmt.Errorf("worker panic")
	ErrDuplicateConnection  = fmt.Errorf("connection id is already registered")
	ErrUnknownConnection    = fmt.Errorf("connection is not registered")
	ErrReservedRoom         = fmt.Errorf("connection cannot leave its own identity room")
	ErrDispatchFailed       = fmt.Errorf("delivery failed for every target connection")
	ErrInvalidScope         = fmt.Errorf("invalid unread scope")
	ErrNoNotificationTarget = fmt.Errorf("notification type has no delivery target")
	ErrInvalidToken         = fmt.Errorf("invalid or expired token")
	ErrSlowConsumer         = fmt.Errorf("connection send buffer is full")
)
