package task

import "errors"

// ErrWorkerFault marks a task whose processing panicked.
var ErrWorkerFault = errors.New("task worker fault")

// ErrManagerStopped is returned by Submit after Stop.
var ErrManagerStopped = errors.New("task manager stopped")
