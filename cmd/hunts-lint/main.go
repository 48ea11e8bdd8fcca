// hunts-lint validates hunt definition files without touching the database.
// Exits nonzero when any file has problems, so it can run in CI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"sidequest/huntfile"
)

func main() {
	patterns := os.Args[1:]
	if len(patterns) == 0 {
		patterns = []string{"./hunts/*.json"}
	}

	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			fmt.Printf("error: bad pattern %q: %v\n", pattern, err)
			os.Exit(1)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		fmt.Println("no hunt definition files found")
		return
	}

	exitCode := 0
	for _, f := range files {
		hunts, err := huntfile.Load(f)
		if err != nil {
			fmt.Printf("%s: %v\n", f, err)
			exitCode = 1
			continue
		}

		bad := 0
		for i := range hunts {
			problems := huntfile.Validate(&hunts[i])
			for _, p := range problems {
				fmt.Printf("%s: %q: %s\n", f, hunts[i].Title, p)
			}
			bad += len(problems)
		}
		if bad > 0 {
			exitCode = 1
		} else {
			fmt.Printf("%s: OK (%d hunt(s))\n", f, len(hunts))
		}
	}
	os.Exit(exitCode)
}
