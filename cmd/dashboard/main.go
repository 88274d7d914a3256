package main

import "github.com/frahmantamala/resource-dashboard/cmd"

func main() {
	cmd.Execute()
}
