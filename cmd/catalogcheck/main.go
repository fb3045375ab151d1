// Проверка файла каталога предметов: структурные ошибки, проблемы данных и digest.
//
// Usage:
//
//	go run ./cmd/catalogcheck data/items.yaml data/extra.json
//	go run ./cmd/catalogcheck --strict data/items.yaml   # проблемы данных = ошибка
//	go run ./cmd/catalogcheck --dump > data/items.yaml   # встроенный каталог в YAML
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/udisondev/itemcore/internal/data"
)

var errProblems = errors.New("catalog has data problems")

func main() {
	strict := flag.Bool("strict", false, "treat data problems as errors")
	dump := flag.Bool("dump", false, "write the built-in catalog as YAML to stdout and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: catalogcheck [--strict] file...\n       catalogcheck --dump\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *dump {
		if err := data.Default().WriteYAML(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "dump: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	failed := false
	for _, path := range flag.Args() {
		if err := check(os.Stdout, path, *strict); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

// check загружает каталог и печатает сводку. Возвращает ошибку загрузки
// или errProblems в strict-режиме.
func check(w io.Writer, path string, strict bool) error {
	c, err := data.LoadCatalogFile(path)
	if err != nil {
		return err
	}

	problems := c.Problems()
	fmt.Fprintf(w, "%s: %d items, %d problems, digest %s\n", path, c.Len(), len(problems), c.DigestHex())
	for _, p := range problems {
		fmt.Fprintf(w, "  - %s\n", p)
	}
	if strict && len(problems) > 0 {
		return errProblems
	}
	return nil
}
