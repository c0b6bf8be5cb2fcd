// Command dechord converts ChordPro files to the plain chord-over-text song
// format. With no arguments it reads stdin.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dgallion1/rechord/internal/chordpro"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "dechord:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return convert(stdin, stdout)
	}
	for i, path := range args {
		if i > 0 {
			if _, err := io.WriteString(stdout, "\n"); err != nil {
				return err
			}
		}
		if err := convertFile(path, stdout); err != nil {
			return err
		}
	}
	return nil
}

func convertFile(path string, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := convert(f, w); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func convert(r io.Reader, w io.Writer) error {
	doc, err := chordpro.Convert(r)
	if err != nil {
		return err
	}
	_, err = doc.WriteTo(w)
	return err
}
