// Package main is the entry point for apiref.
package main

func main() {
	Execute()
}
