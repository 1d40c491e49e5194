package main

import "app-transcript/cmd/transcript/cmd"

func main() {
	cmd.Execute()
}
