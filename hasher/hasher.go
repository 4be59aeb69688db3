package hasher

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	hashBufferSmallSize      = 32 * 1024
	hashBufferLargeSize      = 128 * 1024
	hashLargeBufferThreshold = 256 * 1024

	maxAttempts = 3
)

// ErrFileVanished marks a file that disappeared between enumeration and
// hashing. The race is expected and callers treat it as a quiet skip.
var ErrFileVanished = errors.New("file vanished before hashing")

// retryDelay is the wait between attempts on a transient failure.
var retryDelay = time.Second

// hashOnceFn is a seam for tests exercising the retry loop.
var hashOnceFn = hashOnce

var hashBufferSmallPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, hashBufferSmallSize)
		return &buf
	},
}

var hashBufferLargePool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, hashBufferLargeSize)
		return &buf
	},
}

// HashFile computes the SHA-1 digest of the file's full contents and
// returns it as 40 lowercase hex characters. Transient access failures
// are retried up to maxAttempts with a constant one-second wait; any
// other failure is permanent and returned as-is.
func HashFile(ctx context.Context, path string) (string, error) {
	operation := func() (string, error) {
		sum, err := hashOnceFn(path)
		if err == nil {
			return sum, nil
		}
		if os.IsNotExist(err) {
			return "", backoff.Permanent(ErrFileVanished)
		}
		if isTransient(err) {
			return "", err
		}
		return "", backoff.Permanent(err)
	}
	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(retryDelay)),
		backoff.WithMaxTries(maxAttempts),
	)
}

func hashOnce(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	bufferPool := &hashBufferSmallPool
	if info, statErr := file.Stat(); statErr == nil && info.Size() >= hashLargeBufferThreshold {
		bufferPool = &hashBufferLargePool
	}
	bufferPtr := bufferPool.Get().(*[]byte)
	defer bufferPool.Put(bufferPtr)

	h := sha1.New()
	if _, err := io.CopyBuffer(h, file, *bufferPtr); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// isTransient reports whether the failure looks like a temporarily
// inaccessible file (locked or busy) rather than a hard error.
func isTransient(err error) bool {
	for _, errno := range []syscall.Errno{
		syscall.EAGAIN,
		syscall.EBUSY,
		syscall.EINTR,
		syscall.ETXTBSY,
	} {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}
