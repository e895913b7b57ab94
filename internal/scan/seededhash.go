package scan

// scanSeed is the fixed 64-bit seed every streaming hash is primed with.
const scanSeed uint64 = 0x09747B2842093420

// XXH64's four primes, per the published algorithm.
//
// These are declared as vars rather than consts: scanSeed + xxh64Prime1 +
// xxh64Prime2 below wraps around the uint64 range, which is valid runtime
// modular arithmetic but not a representable typed constant expression.
var (
	xxh64Prime1 uint64 = 11400714785074694791
	xxh64Prime2 uint64 = 14029467366897019727
	xxh64Prime3 uint64 = 1609587929392839161
	xxh64Prime4 uint64 = 9650029242287828579
	xxh64Prime5 uint64 = 2870177450012600261
)

// seededDigest is a streaming implementation of XXH64 with an explicit
// seed, folded into the four lane accumulators' initial values (v1 = seed
// + prime1 + prime2, v2 = seed + prime2, v3 = seed, v4 = seed - prime1)
// and into the short-input base (h64 = seed + prime5), per the published
// algorithm. github.com/cespare/xxhash/v2 exposes no seeded constructor,
// so the seeded variant is carried here directly.
type seededDigest struct {
	v1, v2, v3, v4 uint64
	total          uint64
	buf            [32]byte
	bufUsed        int
}

func newSeededDigest() *seededDigest {
	return &seededDigest{
		v1: scanSeed + xxh64Prime1 + xxh64Prime2,
		v2: scanSeed + xxh64Prime2,
		v3: scanSeed,
		v4: scanSeed - xxh64Prime1,
	}
}

func xxh64Rotl(x uint64, r uint) uint64 { return (x << r) | (x >> (64 - r)) }

func xxh64Round(acc, input uint64) uint64 {
	acc += input * xxh64Prime2
	acc = xxh64Rotl(acc, 31)
	acc *= xxh64Prime1
	return acc
}

func xxh64MergeRound(acc, val uint64) uint64 {
	val = xxh64Round(0, val)
	acc ^= val
	acc = acc*xxh64Prime1 + xxh64Prime4
	return acc
}

func xxh64LE64(b []byte) uint64 {
	_ = b[7]
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

func xxh64LE32(b []byte) uint32 {
	_ = b[3]
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// processBlock folds one 32-byte block into the four lane accumulators.
func (d *seededDigest) processBlock(b []byte) {
	d.v1 = xxh64Round(d.v1, xxh64LE64(b[0:8]))
	d.v2 = xxh64Round(d.v2, xxh64LE64(b[8:16]))
	d.v3 = xxh64Round(d.v3, xxh64LE64(b[16:24]))
	d.v4 = xxh64Round(d.v4, xxh64LE64(b[24:32]))
}

// Write feeds p into the digest, buffering any partial trailing block
// until either more data or Sum64 arrives.
func (d *seededDigest) Write(p []byte) (int, error) {
	n := len(p)
	d.total += uint64(n)

	if d.bufUsed > 0 {
		need := 32 - d.bufUsed
		if len(p) < need {
			copy(d.buf[d.bufUsed:], p)
			d.bufUsed += len(p)
			return n, nil
		}
		copy(d.buf[d.bufUsed:], p[:need])
		d.processBlock(d.buf[:])
		p = p[need:]
		d.bufUsed = 0
	}

	for len(p) >= 32 {
		d.processBlock(p[:32])
		p = p[32:]
	}

	if len(p) > 0 {
		copy(d.buf[:], p)
		d.bufUsed = len(p)
	}
	return n, nil
}

// Sum64 finalizes the digest. It does not reset state; nothing in this
// codebase calls it more than once per file.
func (d *seededDigest) Sum64() uint64 {
	var h64 uint64
	if d.total >= 32 {
		h64 = xxh64Rotl(d.v1, 1) + xxh64Rotl(d.v2, 7) + xxh64Rotl(d.v3, 12) + xxh64Rotl(d.v4, 18)
		h64 = xxh64MergeRound(h64, d.v1)
		h64 = xxh64MergeRound(h64, d.v2)
		h64 = xxh64MergeRound(h64, d.v3)
		h64 = xxh64MergeRound(h64, d.v4)
	} else {
		h64 = scanSeed + xxh64Prime5
	}

	h64 += d.total

	rem := d.buf[:d.bufUsed]
	for len(rem) >= 8 {
		k1 := xxh64Round(0, xxh64LE64(rem[:8]))
		h64 ^= k1
		h64 = xxh64Rotl(h64, 27)*xxh64Prime1 + xxh64Prime4
		rem = rem[8:]
	}
	if len(rem) >= 4 {
		h64 ^= uint64(xxh64LE32(rem[:4])) * xxh64Prime1
		h64 = xxh64Rotl(h64, 23)*xxh64Prime2 + xxh64Prime3
		rem = rem[4:]
	}
	for len(rem) > 0 {
		h64 ^= uint64(rem[0]) * xxh64Prime5
		h64 = xxh64Rotl(h64, 11) * xxh64Prime1
		rem = rem[1:]
	}

	h64 ^= h64 >> 33
	h64 *= xxh64Prime2
	h64 ^= h64 >> 29
	h64 *= xxh64Prime3
	h64 ^= h64 >> 32
	return h64
}
