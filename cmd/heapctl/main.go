// heapctl drives the allocator from the command line: replay request traces,
// report utilization, and inspect the size-class layout.
package main

func main() {
	execute()
}
