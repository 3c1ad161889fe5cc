package dispatch

import (
	"fmt"
	"net/http"
	"strings"
)

// Operation is a request kind. It selects the HTTP verb and body encoding.
type Operation string

const (
	OpGet    Operation = "get"
	OpPost   Operation = "post"
	OpPut    Operation = "put"
	OpDelete Operation = "delete"

	// OpLogin is sent as a POST with a form-urlencoded body. A 401 answer to
	// it is an ordinary failure, not a session expiry.
	OpLogin Operation = "login"
)

// ParseOperation converts a case-insensitive operation name.
func ParseOperation(s string) (Operation, error) {
	op := Operation(strings.ToLower(strings.TrimSpace(s)))
	if err := op.Validate(); err != nil {
		return "", err
	}
	return op, nil
}

// Validate returns an error for unknown operations.
func (o Operation) Validate() error {
	switch o {
	case OpGet, OpPost, OpPut, OpDelete, OpLogin:
		return nil
	default:
		return fmt.Errorf("unsupported operation %q", string(o))
	}
}

// Method returns the HTTP verb the operation is sent with.
func (o Operation) Method() string {
	switch o {
	case OpGet:
		return http.MethodGet
	case OpPut:
		return http.MethodPut
	case OpDelete:
		return http.MethodDelete
	default:
		return http.MethodPost
	}
}

func (o Operation) String() string {
	return string(o)
}
