package main

import "github.com/lai323/lutego/cmd"

func main() {
	cmd.Execute()
}
