package main

import "github.com/AzielCF/az-cube/cmd"

func main() {
	cmd.Execute()
}
