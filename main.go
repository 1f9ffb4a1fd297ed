package main

import "github.com/devicelab-dev/uiquery/pkg/cli"

func main() {
	cli.Execute()
}
