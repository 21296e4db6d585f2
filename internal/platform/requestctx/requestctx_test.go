package requestctx

import (
	"context"
	"testing"
)

func TestOperatorFromContextRoundTrip(t *testing.T) {
	want := Operator{SessionID: "s-1", Username: "admin", Token: "token"}
	got, ok := OperatorFromContext(WithOperator(context.Background(), want))
	if !ok {
		t.Fatal("expected operator in context")
	}
	if got != want {
		t.Fatalf("OperatorFromContext = %+v, want %+v", got, want)
	}
}

func TestOperatorFromContextEmpty(t *testing.T) {
	if _, ok := OperatorFromContext(context.Background()); ok {
		t.Fatal("expected no operator")
	}
	if _, ok := OperatorFromContext(nil); ok {
		t.Fatal("expected no operator for nil context")
	}
	if _, ok := OperatorFromContext(WithOperator(context.Background(), Operator{Username: "admin"})); ok {
		t.Fatal("operator without token should not count")
	}
}
