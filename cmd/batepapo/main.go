package main

import "github.com/nfrund/batepapo/cmd/batepapo/cmd"

func main() {
	cmd.Execute()
}
