package main

import (
	"log"
	"os"

	"github.com/cs-au-dk/immut/utils"
)

var (
	opts = utils.Opts()
	task = opts.Task()
)

func main() {
	utils.ParseArgs()

	pl, err := load()
	if err != nil {
		log.Println("Failed to load the program model")
		log.Println(err)
		os.Exit(1)
	}

	if !task.IsClassify() {
		pl.secondaryTask()
		gatherMetrics(pl)
		return
	}

	store, err := pl.solve()
	if err != nil {
		log.Fatalln("Classification failed:", err)
	}
	failed := pl.printClassifications(store)
	gatherMetrics(pl)

	if failed {
		os.Exit(1)
	}
}
