package main

import (
	"wghttp/config"
	"wghttp/internal/logs"
	"wghttp/server"
)

func main() {
	cfg := config.MustLoad()
	app := &server.App{}
	if err := app.Initialize(cfg); err != nil {
		logs.Logger.Fatal(err)
	}
	if err := app.Run(); err != nil {
		logs.Logger.Fatal(err)
	}
}
