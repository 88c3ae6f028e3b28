package model

import "math/rand"

// walks per generator stream; fixed so that results do not depend on the
// number of workers
const chunkSize = 128

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// streamSeed derives an independent seed for one (angle, order, chunk) stream.
func streamSeed(seed int64, angle, order, chunk int) int64 {
	x := splitmix64(uint64(seed))
	for _, v := range [...]int{angle, order, chunk} {
		x = splitmix64(x ^ uint64(v))
	}
	return int64(x)
}

func newStream(seed int64, angle, order, chunk int) *rand.Rand {
	return rand.New(rand.NewSource(streamSeed(seed, angle, order, chunk)))
}
