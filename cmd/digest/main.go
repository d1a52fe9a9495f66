package main

import "github.com/mvp-joe/project-digest/internal/cli"

func main() {
	cli.Execute()
}
