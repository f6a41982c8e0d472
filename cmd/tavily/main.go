package main

import "github.com/cliffyan/go-tavily-search-mcp/internal/cli"

func main() {
	cli.Execute()
}
