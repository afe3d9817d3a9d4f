package main

import (
	"context"
	"fmt"
	"time"
)

func TestExport(c Config) {

	p := NewPersister(c)
	s := GenerateSnapshot(c)

	t0 := time.Now()
	err := p.Export(context.Background(), "bench", s)
	if err != nil {
		panic(err)
	}
	took := time.Since(t0)

	total := c.Collections * c.Documents
	fmt.Println("export took:", took)
	fmt.Printf("Throughput: %.2f docs/sec\n", float64(total)/took.Seconds())
}

func TestLoad(c Config) {

	p := NewPersister(c)
	err := p.Export(context.Background(), "bench", GenerateSnapshot(c))
	if err != nil {
		panic(err)
	}

	t0 := time.Now()
	s, err := p.Load(context.Background(), "bench")
	if err != nil {
		panic(err)
	}
	took := time.Since(t0)

	total := 0
	for _, col := range s.Collections {
		total += col.Len()
	}
	fmt.Println("load took:", took, "documents:", total)
	fmt.Printf("Throughput: %.2f docs/sec\n", float64(total)/took.Seconds())
}
