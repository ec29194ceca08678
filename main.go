package main

import (
	"video-fetcher/cmd"
	"video-fetcher/infrastructure/logger"
)

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	cmd.Execute()
}
