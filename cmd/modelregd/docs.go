package main

// General API documentation for swaggo. Regenerate with `swag init -g cmd/modelregd/docs.go -o internal/httpapi/docs`.
//
// @title           modelreg API
// @version         1.0
// @description     HTTP API for registering, loading and reconfiguring models.
//
// @contact.name   modelreg maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
