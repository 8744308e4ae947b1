package cli

import (
	"fmt"

	"github.com/fatih/color"
)

func printHeader(title string) {
	fmt.Println(color.CyanString(logo))
	if title != "" {
		fmt.Println(title)
		fmt.Println("─────────────────────")
	}
}

func printError(format string, args ...any) {
	fmt.Println(color.RedString("Error: "+format, args...))
}

func printSuccess(format string, args ...any) {
	fmt.Println(color.GreenString(format, args...))
}
