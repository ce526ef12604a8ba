package main

import (
	"fmt"
	"os"
	"strings"

	lx "github.com/tinyrange/canonbounds/internal/lexer"
)

// debug_tokens dumps the tokens of a bounds expression, read from a file or
// from the remaining arguments with -e.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: debug_tokens <file> | -e <expr>...")
		os.Exit(2)
	}
	var src string
	if os.Args[1] == "-e" {
		src = strings.Join(os.Args[2:], " ")
	} else {
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		src = string(data)
	}
	l := lx.New(src)
	for {
		t := l.Next()
		fmt.Printf("%v %q at %d:%d\n", t.Type, t.Prefix+t.Lex, t.Line, t.Col)
		if t.Type == lx.EOF || t.Type == lx.ILLEGAL {
			break
		}
	}
}
