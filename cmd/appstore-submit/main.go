package main

import "appstore-submit/internal/cli"

func main() {
	cli.Execute()
}
