package main

import "github.com/chartapp/chartapp-services/cmd"

func main() {
	cmd.Execute()
}
