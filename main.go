package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/joho/godotenv"

	"tsload/upload"
)

func main() {
	// TSLOAD_SERVER and TSLOAD_TOKEN can also come from a local .env file
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn(err.Error())
	}

	var config upload.Config
	arg.MustParse(&config)

	if err := config.Execute(context.Background()); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
