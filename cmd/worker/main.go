package main

import (
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/app"
)

func main() {
	_ = godotenv.Load()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := app.RunWorker(); err != nil {
		logger.Fatal("worker failed", zap.Error(err))
	}
}
