package main

import (
	"github.com/lunixbochs/pecorn/go/cmd"

	_ "github.com/lunixbochs/pecorn/go/cmd/inspect"
	_ "github.com/lunixbochs/pecorn/go/cmd/sections"
)

func main() { cmd.Main() }
