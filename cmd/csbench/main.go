package main

import (
	csbench "github.com/tu-csb/csbench"
)

func main() {
	csbench.Main()
}
