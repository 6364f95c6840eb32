// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/bib0x/dv/cmd/dvenv"

func main() {
	cmd.Execute()
}
