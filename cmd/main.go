package main

import (
	"github.com/darazboard/order-sync/internal/app"
	"github.com/darazboard/order-sync/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
