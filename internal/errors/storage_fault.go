package errors

// Storage wraps an infrastructure failure. The cause is kept for logging
// and is never rendered to clients.
func Storage(op string, err error) *Exception {
	return &Exception{
		Kind:    KindStorage,
		Message: op,
		Err:     err,
	}
}
