package main

import "github.com/panefit/panefit/cmd"

func main() {
	cmd.Execute()
}
