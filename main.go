package main

import "mememates-backend/cmd"

func main() {
	cmd.Run()
}
