// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// dispatch submits one cluster batch job per dataset identifier listed
// in a plain-text file, carrying the identifier to the job script in the
// DATASET environment variable. Each submission is reported as it
// happens; there is no aggregate success or failure status.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var (
	list   = flag.String("list", "", "file of dataset identifiers, one per line.")
	script = flag.String("script", "run_eisa.sh", "batch script passed to the scheduler.")
	submit = flag.String("submit", "qsub", "scheduler submit command.")
	logs   = flag.String("logs", "logs", "directory receiving per-dataset job logs.")
	help   = flag.Bool("help", false, "help prints this message.")
)

func main() {
	flag.Parse()
	if *help {
		flag.Usage()
		os.Exit(0)
	}
	if *list == "" {
		flag.Usage()
		os.Exit(1)
	}

	f, err := os.Open(*list)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		id := strings.TrimSpace(sc.Text())
		if id == "" || strings.HasPrefix(id, "#") {
			continue
		}
		cmd := exec.Command(*submit,
			"-N", "eisa_"+id,
			"-o", filepath.Join(*logs, id+".log"),
			"-v", "DATASET="+id,
			*script,
		)
		out, err := cmd.CombinedOutput()
		os.Stdout.Write(out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "submit failed for %s: %v\n", id, err)
		}
	}
	if err := sc.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
