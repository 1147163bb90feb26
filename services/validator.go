package services

import "github.com/go-playground/validator/v10"

var validate = validator.New()

const defaultPageSize = 20
