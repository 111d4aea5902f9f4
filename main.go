package main

import "github.com/theirongolddev/famfin/cmd"

func main() {
	cmd.Execute()
}
