// Command loadtest drives an in-process engine with randomized limit
// orders and reports matching latency percentiles.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/fatih/color"
	"golang.org/x/time/rate"

	"github.com/erain9/venue/pkg/core"
	"github.com/erain9/venue/pkg/engine"
	"github.com/erain9/venue/pkg/id"
	"github.com/erain9/venue/pkg/messaging"
)

var (
	numWorkers      = flag.Int("workers", 8, "Concurrent workers")
	ordersPerWorker = flag.Int("orders", 10000, "Orders per worker")
	maxRate         = flag.Int("rate", 0, "Max orders per second across all workers (0 = unlimited)")
	symbol          = flag.String("symbol", "LOADTEST", "Symbol to trade")
)

func main() {
	flag.Parse()

	generator, err := id.NewGenerator(1)
	if err != nil {
		log.Fatalf("Failed to create id generator: %v", err)
	}
	eng := engine.NewEngine(generator, messaging.NopPublisher{})
	if err := eng.CreateBook(*symbol); err != nil {
		log.Fatalf("Failed to create order book: %v", err)
	}

	var limiter *rate.Limiter
	if *maxRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(*maxRate), *maxRate)
	}

	// Latency recorded in microseconds, 1us to 10s
	hist := hdrhistogram.New(1, 10_000_000, 3)
	var histMu sync.Mutex
	var failures atomic.Int64

	ctx := context.Background()
	total := *numWorkers * *ordersPerWorker
	log.Printf("Starting %d workers, %d orders per worker...", *numWorkers, *ordersPerWorker)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < *numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			local := hdrhistogram.New(1, 10_000_000, 3)

			for j := 0; j < *ordersPerWorker; j++ {
				if limiter != nil {
					if err := limiter.Wait(ctx); err != nil {
						return
					}
				}

				side := core.Buy
				if rng.Intn(2) == 0 {
					side = core.Sell
				}
				quantity := fmt.Sprintf("%d.0", 1+rng.Intn(100))
				price := fmt.Sprintf("%d.0", 95+rng.Intn(10))

				begin := time.Now()
				_, err := eng.CreateOrder(ctx, *symbol, side, quantity, price)
				elapsed := time.Since(begin)

				if err != nil {
					failures.Add(1)
					continue
				}
				local.RecordValue(elapsed.Microseconds())
			}

			histMu.Lock()
			hist.Merge(local)
			histMu.Unlock()
		}(int64(i + 1))
	}
	wg.Wait()
	duration := time.Since(start)

	bold := color.New(color.Bold)
	good := color.New(color.FgGreen)
	bad := color.New(color.FgRed)

	bold.Println("\n=== Load test results ===")
	fmt.Printf("Orders:     %d in %v\n", total, duration.Round(time.Millisecond))
	good.Printf("Throughput: %.0f orders/sec\n", float64(total)/duration.Seconds())
	if n := failures.Load(); n > 0 {
		bad.Printf("Failures:   %d\n", n)
	}
	fmt.Printf("Latency p50:   %v\n", time.Duration(hist.ValueAtQuantile(50))*time.Microsecond)
	fmt.Printf("Latency p90:   %v\n", time.Duration(hist.ValueAtQuantile(90))*time.Microsecond)
	fmt.Printf("Latency p99:   %v\n", time.Duration(hist.ValueAtQuantile(99))*time.Microsecond)
	fmt.Printf("Latency p99.9: %v\n", time.Duration(hist.ValueAtQuantile(99.9))*time.Microsecond)
	fmt.Printf("Latency max:   %v\n", time.Duration(hist.Max())*time.Microsecond)
}
