package errors

import "fmt"

var (
	ErrWorkerPanic           = fmt.Errorf("worker panic")
	ErrInvalidToken          = fmt.Errorf("token verification failed")
	ErrMalformedNotification = fmt.Errorf("malformed notification")
	ErrUnknownEventKind      = fmt.Errorf("unknown event kind")
	ErrFeedClosed            = fmt.Errorf("notification feed closed")
	ErrStreamUnsupported     = fmt.Errorf("response writer does not support streaming")
)
