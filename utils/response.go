package utils

import (
	"github.com/kataras/iris/v12"
)

type PageMeta struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
}

// JSONPage writes a paginated list envelope. Every list endpoint
// (rsvps, admin events, admin users) answers in this shape.
func JSONPage(ctx iris.Context, data interface{}, page, perPage int, total int64) {
	ctx.JSON(iris.Map{
		"data": data,
		"meta": PageMeta{Page: page, PerPage: perPage, Total: total},
	})
}

// JSONError writes the snake_case error envelope: a stable machine
// code plus a human message.
func JSONError(ctx iris.Context, status int, code, message string) {
	ctx.StatusCode(status)
	ctx.JSON(iris.Map{"error": code, "message": message})
}
