package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	json2 "github.com/go-json-experiment/json"
)

func TestHttp(c Config) {

	if c.Base == "" {
		start, stop := CreateServer(&c)
		defer stop()
		go start()
	}

	payload, err := json2.Marshal(GenerateSnapshot(c))
	if err != nil {
		panic(err)
	}

	t0 := time.Now()
	resp, err := http.Post(c.Base+"/v1/databases/bench:export", "application/json", bytes.NewReader(payload))
	if err != nil {
		panic(err)
	}
	io.Copy(os.Stdout, resp.Body)
	resp.Body.Close()
	fmt.Println("http export took:", time.Since(t0), "bytes:", len(payload))

	t0 = time.Now()
	resp, err = http.Get(c.Base + "/v1/databases/bench")
	if err != nil {
		panic(err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	fmt.Println("http load took:", time.Since(t0), "status:", resp.Status)
}
