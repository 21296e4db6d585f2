// Package requestctx carries the signed-in operator through request contexts.
package requestctx

import "context"

// Operator identifies the dashboard session behind a request.
type Operator struct {
	SessionID string
	Username  string
	// Token is the backend bearer token held by the session.
	Token string
}

// operatorContextKey is the context key for the request operator.
type operatorContextKey struct{}

// WithOperator stores the operator in context.
func WithOperator(ctx context.Context, operator Operator) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, operatorContextKey{}, operator)
}

// OperatorFromContext returns the operator stored in context.
func OperatorFromContext(ctx context.Context) (Operator, bool) {
	if ctx == nil {
		return Operator{}, false
	}
	operator, ok := ctx.Value(operatorContextKey{}).(Operator)
	if !ok || operator.Token == "" {
		return Operator{}, false
	}
	return operator, true
}
