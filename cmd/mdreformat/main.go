package main

import "github.com/vietddude/mdreformat/internal/cli"

func main() {
	cli.Execute()
}
