package krpc

import "fmt"

// InvalidKRPCError reports a failure to validate the envelope or the
// per-kind schema of an otherwise well-formed bencode dictionary.
type InvalidKRPCError struct {
	Detail string
}

func (e *InvalidKRPCError) Error() string {
	return fmt.Sprintf("invalid KRPC message: %s", e.Detail)
}

func invalid(format string, args ...any) error {
	return &InvalidKRPCError{Detail: fmt.Sprintf(format, args...)}
}
