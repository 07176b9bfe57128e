// Command vcstat prints voice-channel usage from the usage API in the terminal.
package main

func main() {
	Execute()
}
