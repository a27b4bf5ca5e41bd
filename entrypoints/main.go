package main

import (
	"github.com/Laisky/blog-api/cmd"
)

func main() {
	cmd.Execute()
}
