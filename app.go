package main

import "video2midi/cmd"

func main() {
	cmd.Execute()
}
