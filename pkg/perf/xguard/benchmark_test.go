package xguard

import (
	"testing"
	"time"
)

func BenchmarkBloomGuard_ShouldEmit(b *testing.B) {
	g, err := NewBloomGuard(Options{CoolDown: time.Minute})
	if err != nil {
		b.Fatal(err)
	}
	now := time.Now()
	b.ReportAllocs()
	for b.Loop() {
		g.ShouldEmit("Checkout:duration", now)
	}
}

func BenchmarkBloomGuard_ShouldEmit_Parallel(b *testing.B) {
	g, err := NewBloomGuard(Options{CoolDown: time.Minute})
	if err != nil {
		b.Fatal(err)
	}
	now := time.Now()
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			g.ShouldEmit("Checkout:duration", now)
		}
	})
}

func BenchmarkLRUGuard_ShouldEmit_Parallel(b *testing.B) {
	g, err := NewLRUGuard(time.Minute, 1024)
	if err != nil {
		b.Fatal(err)
	}
	now := time.Now()
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			g.ShouldEmit("Checkout:duration", now)
		}
	})
}
