// cmd/main.go
package main

import (
	"go-tube-api/app"
)

// @title           Go-Tube API
// @version         1.0
// @description     User accounts, sessions, and channel profiles for a video platform.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
