// @title           Simbi API
// @version         1.0
// @description     Skill and service exchange marketplace.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	_ "simbi_backend/docs"
	"simbi_backend/internal/app"
)

func main() {
	app.Run()
}
