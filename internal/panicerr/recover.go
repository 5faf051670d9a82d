package panicerr

// Recover runs f, converting any panic into a non-nil error return.
func Recover(name string, f func() error) (err error) {
	defer recoverPanicError(name, &err)
	return f()
}
