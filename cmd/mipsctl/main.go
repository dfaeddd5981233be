package main

import "github.com/smallbiznis/meritscore/internal/cli"

func main() {
	cli.Execute()
}
