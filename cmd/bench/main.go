package main

import (
	"log"
	"strings"

	"github.com/fulldump/goconfig"
)

type Config struct {
	Test        string `usage:"name of the test: ALL | EXPORT | LOAD | HTTP"`
	Base        string `usage:"base URL, empty starts a local server"`
	Collections int    `usage:"number of collections"`
	Documents   int    `usage:"number of documents per collection"`
	Batch       int    `usage:"documents per write"`
	Buffer      int    `usage:"read buffer in bytes"`
	Concurrency int    `usage:"concurrent files, 0 means unbounded"`
	Workers     int    `usage:"number of workers generating documents"`
}

var cleanups []func()

func main() {

	defer func() {
		log.Println("Cleaning up...")
		for _, cleanup := range cleanups {
			cleanup()
		}
	}()

	c := Config{
		Test:        "all",
		Base:        "",
		Collections: 8,
		Documents:   100_000,
		Batch:       25,
		Buffer:      1024 * 1024,
		Concurrency: 0,
		Workers:     16,
	}
	goconfig.Read(&c)

	switch strings.ToUpper(c.Test) {
	case "ALL":
		TestExport(c)
		TestLoad(c)
		TestHttp(c)
	case "EXPORT":
		TestExport(c)
	case "LOAD":
		TestLoad(c)
	case "HTTP":
		TestHttp(c)
	default:
		log.Fatalf("Unknown test %s", c.Test)
	}

}
