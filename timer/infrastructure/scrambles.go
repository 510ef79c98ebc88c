package infrastructure

import (
	"context"
	"time"
)

// FetchFunc returns a scramble. It must always produce one, falling back locally
// when a remote source fails.
type FetchFunc func(ctx context.Context, length int, cubeType string) string

// AsyncScrambles runs fetches off the loop and posts the result back into it.
type AsyncScrambles struct {
	fetch   FetchFunc
	post    func(func()) bool
	timeout time.Duration
}

func NewAsyncScrambles(fetch FetchFunc, post func(func()) bool, timeout time.Duration) *AsyncScrambles {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &AsyncScrambles{fetch: fetch, post: post, timeout: timeout}
}

func (a *AsyncScrambles) Request(length int, cubeType string, deliver func(string)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		scramble := a.fetch(ctx, length, cubeType)
		a.post(func() { deliver(scramble) })
	}()
}
