package main

import "github.com/The-Last-Byte-Bar/Token-Flight/cmd/tokenflight"

func main() {
	tokenflight.Execute()
}
