package main

import "github.com/mvp-joe/hdlast/internal/cli"

func main() {
	cli.Execute()
}
