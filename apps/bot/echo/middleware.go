package echobot

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"

	"github.com/darasabot/darasa/core"
)

const botTokenHeader = "X-Bot-Token"

// botTokenMiddleware authenticates the chat platform gateway. Every request
// must carry the shared token; user identity comes from the payload.
func botTokenMiddleware(conf *core.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			token := ctx.Request().Header.Get(botTokenHeader)
			if conf.BotAPIToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(conf.BotAPIToken)) != 1 {
				return errUnauthorized
			}
			return next(ctx)
		}
	}
}
