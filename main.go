package main

import "github.com/ethanolivertroy/dojo-gate/cmd"

func main() {
	cmd.Execute()
}
