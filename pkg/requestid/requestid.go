// Package requestid carries the id of the request being served through a context.
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Header is read from incoming requests and echoed on responses.
const Header = "X-Request-Id"

const maxLength = 128

type contextKey struct{}

func Generate() string {
	return uuid.NewString()
}

func ToContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns "" when ctx carries no id.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// FromContextPtr is FromContext for optional api fields.
func FromContextPtr(ctx context.Context) *string {
	if id := FromContext(ctx); id != "" {
		return &id
	}
	return nil
}

func FromRequest(r *http.Request) string {
	return FromContext(r.Context())
}

// Valid reports whether a client supplied id can be trusted in logs: printable ASCII, bounded length.
func Valid(id string) bool {
	if id == "" || len(id) > maxLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
