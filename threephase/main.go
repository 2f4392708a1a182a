// Command threephase runs three-phase simulation models.
package main

import "github.com/sarchlab/threephase/threephase/cmd"

func main() {
	cmd.Execute()
}
