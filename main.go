package main

import (
	"almanac/cmd/handlers"
	"almanac/internal/logger"
)

func main() {
	logger.Init()
	handlers.Execute()
}
