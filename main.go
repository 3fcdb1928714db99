package main

import "ardfetch/cmd"

func main() {
	cmd.Execute()
}
