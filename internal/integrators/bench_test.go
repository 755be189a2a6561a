package integrators

import (
	"testing"

	"github.com/san-kum/kapitza/internal/dynamo"
)

func benchmarkMethod(b *testing.B, m Method) {
	sys := &harmonicOscillator{}
	x0 := dynamo.State{1.0, 0.0}
	iv := dynamo.Interval{Start: 0, End: 20}
	opts := DefaultOptions()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Integrate(sys, x0, iv, m, opts); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRK45(b *testing.B)   { benchmarkMethod(b, RK45) }
func BenchmarkDOP853(b *testing.B) { benchmarkMethod(b, DOP853) }
func BenchmarkRadau(b *testing.B)  { benchmarkMethod(b, Radau) }
func BenchmarkBDF(b *testing.B)    { benchmarkMethod(b, BDF) }
func BenchmarkLSODA(b *testing.B)  { benchmarkMethod(b, LSODA) }
