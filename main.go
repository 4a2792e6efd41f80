package main

import "github.com/lukman83/sheetgen/cmd"

func main() {
	cmd.Execute()
}
