package utils

import (
	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

func CreateError(statusCode int, title string, detail string, ctx iris.Context) {
	ctx.StopWithJSON(statusCode, iris.Map{"error": title, "message": detail})
}

func CreateInternalServerError(ctx iris.Context) {
	CreateError(iris.StatusInternalServerError, "Internal Server Error", "Something went wrong, please try again.", ctx)
}

func CreateNotFound(ctx iris.Context) {
	CreateError(iris.StatusNotFound, "Not Found", "Resource not found.", ctx)
}

func CreateEmailAlreadyRegistered(ctx iris.Context) {
	CreateError(iris.StatusConflict, "Registration Error", "Email already registered.", ctx)
}

type validationErrorField struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

func HandleValidationErrors(err error, ctx iris.Context) {
	if errs, ok := err.(validator.ValidationErrors); ok {
		fields := make([]validationErrorField, 0, len(errs))
		for _, e := range errs {
			fields = append(fields, validationErrorField{
				Field: e.Field(),
				Tag:   e.Tag(),
				Value: e.Param(),
			})
		}
		ctx.StopWithJSON(iris.StatusBadRequest, iris.Map{
			"error":  "Validation Error",
			"fields": fields,
		})
		return
	}
	CreateError(iris.StatusBadRequest, "Bad Request", err.Error(), ctx)
}
