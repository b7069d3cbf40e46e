package main

import "github.com/jfmyers9/speedrun/cmd"

func main() {
	cmd.Execute()
}
