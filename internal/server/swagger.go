package server

//go:generate swag init -g internal/server/server.go -o docs/swagger

// @title Guardscan API
// @version 0.1
// @description Interactive documentation for the guardscan scan API surface.
// @contact.name Guardscan Maintainers
// @contact.url https://github.com/raysh454/guardscan
// @BasePath /
