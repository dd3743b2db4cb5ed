package main

import (
	"github.com/gaokaodata/crawler/cmd"
)

func main() {
	cmd.Execute()
}
