package scheduler

import "errors"

var (
	// ErrWorkerStopped is returned by Submit before Start or after Stop
	ErrWorkerStopped = errors.New("bulk sync worker is not running")

	// ErrQueueFull means every queue slot holds a job waiting to be polled
	ErrQueueFull = errors.New("bulk sync queue is full")

	// ErrInvalidWorkerConfig wraps the offending setting
	ErrInvalidWorkerConfig = errors.New("invalid bulk sync worker configuration")
)
