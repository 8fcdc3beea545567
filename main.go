package main

import "crewdesk/internal/app"

// @title           CrewDesk API
// @version         1.0
// @description     Staff accounts with email verification, chat, orders and products.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	app.Run()
}
