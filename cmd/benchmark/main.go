// benchmark drives the exchange's single-threaded dispatch loop
// directly with a synthetic order stream and reports throughput.
// Adapted from the teacher's cmd/benchmark, which fanned a multi-
// worker producer pool into a ring buffer consumed by the matching
// engine; this exchange has no concurrent producers by design (one
// goroutine owns the book), so the benchmark instead measures
// straight-line Handle throughput on the calling goroutine.
package main

import (
	"fmt"
	"time"

	"coreex/domain"
	"coreex/exchange"
	"coreex/protocol"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func main() {
	fmt.Println("=== exchange dispatch benchmark ===")

	ex := exchange.New(zerolog.Nop())
	if err := ex.AddPair("BTC-USD"); err != nil {
		panic(err)
	}

	const testDuration = 5 * time.Second

	var orderCount, fillCount int64
	start := time.Now()
	deadline := start.Add(testDuration)

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
	qps := float64(orderCount) / elapsed.Seconds()
	fps := float64(fillCount) / elapsed.Seconds()

	fmt.Println("\n=== results ===")
	fmt.Printf("duration:      %v\n", elapsed)
	fmt.Printf("orders placed: %d\n", orderCount)
	fmt.Printf("fills:         %d\n", fillCount)
	fmt.Printf("order rate:    %.0f orders/sec\n", qps)
	fmt.Printf("fill rate:     %.0f fills/sec\n", fps)
}
