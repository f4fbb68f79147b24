package main

import (
	"github.com/redasGoluenko/Errando/cmd"
)

func main() {
	cmd.Execute()
}
