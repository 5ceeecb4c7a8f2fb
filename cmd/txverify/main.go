package main

import "github.com/vietddude/txverify/internal/cli"

func main() {
	cli.Execute()
}
