package main

import (
	"github.com/jurisgraph/jurisgraph/internal/server"
	"github.com/jurisgraph/jurisgraph/internal/util"
	"github.com/jurisgraph/jurisgraph/pkg/logger"
	"github.com/jurisgraph/jurisgraph/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
