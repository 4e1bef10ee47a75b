package main

import "github.com/dotcommander/praxy/cmd"

func main() {
	cmd.Execute()
}
