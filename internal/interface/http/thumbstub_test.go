package handlers

import (
	"context"
	"io"
)

type thumbStub string

func (s thumbStub) Upload(_ context.Context, _, _ string, r io.Reader) (string, error) {
	_, _ = io.Copy(io.Discard, r)
	return string(s), nil
}
