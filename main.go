package main

import "github.com/frahmantamala/room-reservation/cmd"

func main() {
	cmd.Execute()
}
