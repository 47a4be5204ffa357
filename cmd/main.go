package main

import (
	"github.com/Indieguru/indieguru-website-sub000/internal/app"
	"github.com/Indieguru/indieguru-website-sub000/internal/config"
	"github.com/gin-gonic/gin"
)

func main() {
	gin.SetMode(gin.ReleaseMode)
	cfg := config.MustLoad()
	app.Run(cfg)
}
