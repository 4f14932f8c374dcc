package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilanghuda/crewhub-backend/pkg/apperror"
	"github.com/gilanghuda/crewhub-backend/pkg/utils"
)

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(RequestLogger())
	return app
}

func body(t *testing.T, r io.Reader) map[string]string {
	t.Helper()
	out := map[string]string{}
	require.NoError(t, json.NewDecoder(r).Decode(&out))
	return out
}

func TestJWTProtected(t *testing.T) {
	app := newApp()
	app.Get("/me", JWTProtected("secret"), func(c *fiber.Ctx) error {
		return c.SendString(UserID(c).String())
	})

	user := uuid.New()
	tok, err := utils.SignUserToken(user, "secret", nil)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, res.StatusCode)
	b, _ := io.ReadAll(res.Body)
	assert.Equal(t, user.String(), string(b))

	res, err = app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, res.StatusCode)
}

func TestCronKeyProtected(t *testing.T) {
	app := newApp()
	app.Post("/sweep", CronKeyProtected("k3y"), func(c *fiber.Ctx) error { return c.SendStatus(204) })

	req := httptest.NewRequest("POST", "/sweep", nil)
	req.Header.Set(CronKeyHeader, "k3y")
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 204, res.StatusCode)

	req = httptest.NewRequest("POST", "/sweep", nil)
	req.Header.Set(CronKeyHeader, "nope")
	res, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 403, res.StatusCode)

	disabled := newApp()
	disabled.Post("/sweep", CronKeyProtected(""), func(c *fiber.Ctx) error { return c.SendStatus(204) })
	res, err = disabled.Test(httptest.NewRequest("POST", "/sweep", nil))
	require.NoError(t, err)
	assert.Equal(t, 403, res.StatusCode)
}

func TestErrorHandler(t *testing.T) {
	app := newApp()
	app.Get("/conflict", func(*fiber.Ctx) error { return apperror.Conflict("reference already set") })
	app.Get("/upstream", func(*fiber.Ctx) error {
		return apperror.Upstream(errors.New("gateway said no"), "payment gateway unavailable")
	})
	app.Get("/boom", func(*fiber.Ctx) error { return errors.New("pq: connection reset") })
	app.Get("/fiber", func(*fiber.Ctx) error { return fiber.ErrUnprocessableEntity })

	res, err := app.Test(httptest.NewRequest("GET", "/conflict", nil))
	require.NoError(t, err)
	assert.Equal(t, 409, res.StatusCode)
	assert.Equal(t, "reference already set", body(t, res.Body)["message"])

	res, err = app.Test(httptest.NewRequest("GET", "/upstream", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, res.StatusCode)
	b := body(t, res.Body)
	assert.Equal(t, "payment gateway unavailable", b["message"])
	assert.Equal(t, "gateway said no", b["error"])

	res, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, res.StatusCode)
	assert.Equal(t, "internal server error", body(t, res.Body)["message"])

	res, err = app.Test(httptest.NewRequest("GET", "/fiber", nil))
	require.NoError(t, err)
	assert.Equal(t, 422, res.StatusCode)
}
