package shopify

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrNotFound               = errors.New("shopify: not found")
	ErrProductNotFound        = errors.Wrap(ErrNotFound, "product")
	ErrInventoryLevelNotFound = errors.Wrap(ErrNotFound, "inventory level")
	ErrLocationNotFound       = errors.Wrap(ErrNotFound, "location")
)

// RemoteCallError is returned when a request to the Admin API fails at the
// transport level or the response carries GraphQL errors.
type RemoteCallError struct {
	Op  string
	Err error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("shopify %s: %v", e.Op, e.Err)
} // ./Error

func (e *RemoteCallError) Unwrap() error {
	return e.Err
} // ./Unwrap

// UserErrors collects the userErrors of a single mutation.
type UserErrors struct {
	Op     string
	Errors []UserError
}

func (e *UserErrors) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, u := range e.Errors {
		if len(u.Field) > 0 {
			msgs = append(msgs, fmt.Sprintf("%s: %s", strings.Join(u.Field, "."), u.Message))
			continue
		}
		msgs = append(msgs, u.Message)
	}
	return fmt.Sprintf("shopify %s: %s", e.Op, strings.Join(msgs, "; "))
} // ./Error

func userErrors(op string, ue []UserError) error {
	if len(ue) == 0 {
		return nil
	}
	return &UserErrors{Op: op, Errors: ue}
} // ./userErrors
