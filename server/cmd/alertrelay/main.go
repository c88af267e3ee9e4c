package main

import "github.com/obsidianstack/alertrelay/server/internal/cli"

func main() {
	cli.Execute()
}
