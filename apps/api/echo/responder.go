package echoapi

import "github.com/labstack/echo/v4"

// Envelope is the uniform response body: an HTTP-style status, a
// human-readable message and the optional payload.
type Envelope struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(ctx echo.Context, status int, message string, data interface{}) error {
	return ctx.JSON(status, Envelope{Status: status, Message: message, Data: data})
}
