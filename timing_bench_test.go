package clearurls

import (
	"math"
	"sync"
	"testing"
)

const concurrency = 100

const benchURL = "https://r.example.com/?url=https%3A%2F%2Fwww.target.com%2Fitem%3Fid%3D7%26utm_source%3Dx%26utm_medium%3Dy%26ref%3Dme%26fbclid%3Dabc"

func BenchmarkClean(b *testing.B) {
	ps := newTestProviders()
	if err := ps.Compile(); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ps.Clean(benchURL, false); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCleanConcurrent(b *testing.B) {
	ps := newTestProviders()
	if err := ps.Compile(); err != nil {
		b.Fatal(err)
	}
	clean := ps.Cleaner(false)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	b.ResetTimer()
	for i := 0; i < concurrency; i++ {
		go func() {
			for j := 0; j < int(math.Ceil(float64(b.N)/concurrency)); j++ {
				clean(benchURL)
			}
			wg.Done()
		}()
	}
	wg.Wait()
}
