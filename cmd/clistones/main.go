package main

import (
	clistones "github.com/radioastro/stonechat/src"
)

func main() {
	clistones.ClistonesMain()
}
