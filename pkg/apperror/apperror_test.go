package apperror

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("episodes required"), http.StatusBadRequest},
		{NotFound("request not found"), http.StatusNotFound},
		{Conflict("reference already set"), http.StatusConflict},
		{Auth("invalid signature"), http.StatusUnauthorized},
		{Forbidden("bad cron key"), http.StatusForbidden},
		{Upstream(errors.New("timeout"), "payment gateway error"), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, HTTPStatus(c.err), c.err.Error())
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("create order: %w", NotFound("user not found"))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, Is(err, KindNotFound))
	assert.False(t, Is(nil, KindNotFound))
}

func TestBody(t *testing.T) {
	t.Run("unknown errors are generic", func(t *testing.T) {
		body := Body(errors.New("pq: relation does not exist"))
		assert.Equal(t, map[string]string{"message": "internal server error"}, body)
	})

	t.Run("upstream carries detail", func(t *testing.T) {
		body := Body(Upstream(errors.New("Invalid key"), "payment gateway error"))
		assert.Equal(t, "payment gateway error", body["message"])
		assert.Equal(t, "Invalid key", body["error"])
	})

	t.Run("validation has message only", func(t *testing.T) {
		body := Body(Validation("nameofservice is required"))
		assert.Equal(t, "nameofservice is required", body["message"])
		_, ok := body["error"]
		assert.False(t, ok)
	})
}
