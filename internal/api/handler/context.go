package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// identity is the caller as established by the Auth middleware.
type identity struct {
	UserID   string
	Username string
	Role     string
}

// ctxIdentity extracts the auth claims injected by the Auth middleware and
// performs a fast-fail check before any service call: a token without a
// user id is structurally valid but operationally unusable.
func ctxIdentity(c echo.Context) (identity, error) {
	var id identity
	id.Role, _ = c.Get("role").(string)
	if id.Role == "" {
		return identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	id.UserID, _ = c.Get("user_id").(string)
	if id.UserID == "" {
		return identity{}, echo.NewHTTPError(http.StatusUnauthorized, "token missing user identity")
	}

	id.Username, _ = c.Get("username").(string)
	return id, nil
}

// bindAndValidate decodes the request body into req and runs the struct
// validator registered on the echo instance.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
