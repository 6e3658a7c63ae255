package main

import "github.com/daveio/ssdetect/cmd"

func main() {
	cmd.Execute()
}
