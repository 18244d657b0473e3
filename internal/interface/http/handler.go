package handlers

import (
	"encoding/json"
	"errors"
	"expvar"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-books-api/pkg/validation"
)

// counters is published under /api/debug/vars.
var counters = expvar.NewMap("books_api")

// bindJSON decodes the request body into dst without validating it; the
// services normalize input before validation. An empty body is allowed only
// when allowEmpty is set.
func bindJSON(c *gin.Context, dst any, allowEmpty bool) error {
	if c.Request.Body == nil {
		if allowEmpty {
			return nil
		}
		return validation.FromBindError(io.EOF)
	}
	dec := json.NewDecoder(c.Request.Body)
	err := dec.Decode(dst)
	if allowEmpty && errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return validation.FromBindError(err)
	}
	// The body must hold exactly one JSON value.
	if err := dec.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
		return validation.FromBindError(validation.ErrTrailingData)
	}
	return nil
}

// fail hands err to the error boundary and stops the chain.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
