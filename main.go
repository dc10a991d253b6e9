package main

import "github.com/revlimit/modengine-go/cmd"

func main() {
	cmd.Execute()
}
