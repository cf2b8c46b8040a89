package stopflag_test

import (
	"sync"
	"testing"

	"github.com/joeycumines/go-dispatchqueue/stopflag"
	"github.com/stretchr/testify/assert"
)

func TestFlag_zeroValueUnset(t *testing.T) {
	var f stopflag.Flag
	assert.False(t, f.Get())
}

func TestFlag_setGetRoundTrip(t *testing.T) {
	f := stopflag.New()
	assert.False(t, f.Get())

	f.Set(true)
	assert.True(t, f.Get())

	f.Set(false)
	assert.False(t, f.Get())
}

func TestFlag_concurrentAccess(t *testing.T) {
	f := stopflag.New()

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f.Set(i%2 == 0)
			_ = f.Get()
		}(i)
	}
	wg.Wait()
}
