package controllers

import (
	"github.com/go-playground/validator/v10"
	utils "github.com/museum/collection-server/utils-go"
)

var standardRoute = utils.JwtMiddlewareConfig{
	ReadFrom: "header",
	Subject:  "access",
}

var validate = validator.New()
