package main

import "github.com/huonw/jump/cmd/scie-pack/cmd"

func main() {
	cmd.Execute()
}
