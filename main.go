package main

import "github.com/vsh-project/vsh/cmd"

func main() {
	cmd.Execute()
}
