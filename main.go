package main

import "github.com/sasif-infinite/mcp/cmd"

func main() {
	cmd.Execute()
}
