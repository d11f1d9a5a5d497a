package main

import "github.com/eransh/subtle/cmd/subtle/cmd"

func main() {
	cmd.Execute()
}
