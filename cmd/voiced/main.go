package main

import "github.com/eleven-am/voice-client/internal/bootstrap"

func main() {
	bootstrap.Run()
}
