package echobot

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasabot/darasa/core"
	"github.com/darasabot/darasa/core/chat"
)

type (
	messageApi struct {
		engine *chat.Engine
	}

	incomingMessage struct {
		UserID int64  `json:"user_id" validate:"required"`
		Text   string `json:"text" validate:"required"`
	}
)

func registerMessageAPI(g *echo.Group, engine *chat.Engine) {
	api := messageApi{engine: engine}
	g.POST("/messages", api.receive)
}

// receive hands one incoming chat event to the conversation engine and
// returns its reply. A silently ignored event yields 204 No Content.
func (api *messageApi) receive(ctx echo.Context) error {
	var data incomingMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to incomingMessage")
	}
	if err := core.Validate.Struct(&data); err != nil {
		return err
	}

	rep, err := api.engine.Receive(ctx.Request().Context(), data.UserID, data.Text)
	if err != nil {
		return err
	}
	if rep.IsZero() {
		return ctx.NoContent(http.StatusNoContent)
	}
	return ctx.JSON(http.StatusOK, rep)
}
