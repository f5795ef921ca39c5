// Command settlement runs the settlement switch and queries routes offline.
package main

func main() {
	Execute()
}
