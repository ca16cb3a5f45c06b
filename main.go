package main

import (
	"runclub.dev/backend/cmd/app"
)

func main() {
	app.Run()
}
