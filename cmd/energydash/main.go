package main

import "energy-insights/internal/cli"

func main() {
	cli.Execute()
}
