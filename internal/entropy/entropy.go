// Package entropy provides the random sources that drive the shuffle.
package entropy

import (
	"crypto/cipher"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.dedis.ch/kyber/v4/suites"

	"klondike/internal/domain"
)

const (
	KindMath   = "math"
	KindCrypto = "crypto"
)

// NewMath returns a math/rand source. A zero seed seeds from the clock.
func NewMath(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Crypto draws shuffle positions from a cryptographic stream. It is safe for
// concurrent use.
type Crypto struct {
	mu     sync.Mutex
	stream cipher.Stream
	buf    [8]byte
}

// NewCrypto uses the Ed25519 suite's random stream.
func NewCrypto() *Crypto {
	suite := suites.MustFind("Ed25519")
	return &Crypto{stream: suite.RandomStream()}
}

// Intn returns a uniform value in [0, n) by rejection sampling. It panics if
// n <= 0, like math/rand.
func (c *Crypto) Intn(n int) int {
	if n <= 0 {
		panic("entropy: invalid argument to Intn")
	}
	bound := uint64(n)
	limit := ^uint64(0) - (^uint64(0) % bound)

	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		for i := range c.buf {
			c.buf[i] = 0
		}
		c.stream.XORKeyStream(c.buf[:], c.buf[:])
		v := binary.LittleEndian.Uint64(c.buf[:])
		if v < limit {
			return int(v % bound)
		}
	}
}

// New builds the source named by kind.
func New(kind string, seed int64) (domain.RandomSource, error) {
	switch kind {
	case "", KindMath:
		return NewMath(seed), nil
	case KindCrypto:
		return NewCrypto(), nil
	default:
		return nil, fmt.Errorf("unknown entropy source %q", kind)
	}
}
