package main

import "github.com/benchaudit/benchaudit/internal/cli"

func main() {
	cli.Execute()
}
