package main

import (
	"github.com/campuseats/canteen/internal/app"
	"github.com/campuseats/canteen/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
