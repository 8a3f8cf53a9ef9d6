package main

import "ozzus/logroute/internal/cli"

func main() {
	cli.Execute()
}
