package main

import "bttctl/cmd"

func main() {
	cmd.Execute()
}
