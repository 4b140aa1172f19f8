package main

import "msbuild-packages/internal/cli"

func main() {
	cli.Execute()
}
