package main

import "mapsync/cmd"

func main() {
	cmd.Execute()
}
