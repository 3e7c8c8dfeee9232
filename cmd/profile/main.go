// profile runs the same synthetic order stream as cmd/benchmark while
// recording a CPU profile, for studying where Handle spends its time.
// Adapted from the teacher's cmd/profile the same way cmd/benchmark
// was: no ring buffer, no worker pool, a single goroutine driving
// Exchange.Handle directly.
package main

import (
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"coreex/domain"
	"coreex/exchange"
	"coreex/protocol"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func main() {
	cpuFile, err := os.Create("cpu.prof")
	if err != nil {
		panic(err)
	}
	defer cpuFile.Close()

	pprof.StartCPUProfile(cpuFile)
	defer pprof.StopCPUProfile()

	fmt.Println("=== profiling exchange dispatch ===")
	fmt.Println("writing CPU profile to cpu.prof")

	ex := exchange.New(zerolog.Nop())
	if err := ex.AddPair("BTC-USD"); err != nil {
		panic(err)
	}

	const duration = 10 * time.Second
	start := time.Now()
	deadline := start.Add(duration)

	var orderCount, fillCount int64
	orderID := 0
	for time.Now().Before(deadline) {
		side := domain.Buy
		if orderID%2 != 0 {
			side = domain.Sell
		}
		price := uint64(50000 + orderID%200)

		env := ex.Handle(protocol.NewPlaceOrder(uuid.New(), "BTC-USD", side, price, 1))
		orderCount++
		for _, msg := range env.Messages {
			if msg.Type == protocol.TypeOrderFilled {
				fillCount++
			}
		}
		orderID++
	}

	elapsed := time.Since(start)
	fmt.Println("\n=== results ===")
	fmt.Printf("orders placed: %d\n", orderCount)
	fmt.Printf("fills:         %d\n", fillCount)
	fmt.Printf("order rate:    %.0f orders/sec\n", float64(orderCount)/elapsed.Seconds())
	fmt.Printf("fill rate:     %.0f fills/sec\n", float64(fillCount)/elapsed.Seconds())

	fmt.Println("\nanalyze with:")
	fmt.Println("  go tool pprof -http=:8080 cpu.prof")
}
