package main

import "deltaglider/cmd"

func main() {
	cmd.Execute()
}
