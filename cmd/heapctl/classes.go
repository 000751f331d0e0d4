package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/internal/format"
)

func init() {
	rootCmd.AddCommand(newClassesCmd())
}

func newClassesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classes",
		Short: "Print the size-class table",
		Long: `The classes command prints the segregated free-list layout:
which block sizes (in words and bytes) each class covers.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printClasses()
		},
	}
}

func printClasses() {
	fmt.Printf("%-6s %-22s %s\n", "class", "words", "bytes")
	for k := 0; k < format.NumClasses; k++ {
		lo := int64(1) << k
		if k == format.NumClasses-1 {
			fmt.Printf("%-6d [%d, ...)              [%d, ...)\n",
				k, lo, lo*format.WordSize)
			continue
		}
		hi := lo << 1
		fmt.Printf("%-6d [%-8d, %-8d)   [%d, %d)\n",
			k, lo, hi, lo*format.WordSize, hi*format.WordSize)
	}
}
