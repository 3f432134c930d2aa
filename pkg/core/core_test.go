package core

import (
	"context"
	"testing"
)

func TestWithRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background())

	reqID, ok := ctx.Value(RequestIDKey{}).(string)
	if !ok || reqID == "" {
		t.Fatal("WithRequestID() did not store a request id")
	}

	other := WithRequestID(context.Background())
	otherID, _ := other.Value(RequestIDKey{}).(string)
	if reqID == otherID {
		t.Errorf("request ids should be unique, both are %q", reqID)
	}
}

func TestLoggerFromCtx(t *testing.T) {
	if LoggerFromCtx(context.Background()) == nil {
		t.Error("LoggerFromCtx() without a request id should fall back to the default logger")
	}
	if LoggerFromCtx(WithRequestID(context.Background())) == nil {
		t.Error("LoggerFromCtx() with a request id returned nil")
	}
}
