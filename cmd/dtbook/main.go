package main

import "github.com/example/dtbook/cmd"

func main() {
	cmd.Execute()
}
