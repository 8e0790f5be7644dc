package main

import "github.com/listharvest/listharvest/cmd"

func main() {
	cmd.Execute()
}
