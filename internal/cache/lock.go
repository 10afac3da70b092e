package cache

import (
	"os"
	"strconv"
	"time"
)

const lockExt = ".lock"

// LockStaleAfter is how old a refresh lock may get before it is considered
// abandoned by a crashed process.
const LockStaleAfter = 2 * time.Minute

// TryLock takes the cross-process refresh lock for key. ok is false when
// another process holds it; unlock is always safe to call.
func (s *Store) TryLock(key string) (unlock func(), ok bool) {
	noop := func() {}
	path, err := s.path(key)
	if err != nil {
		return noop, false
	}
	path += lockExt

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			_, _ = f.WriteString(strconv.Itoa(os.Getpid()))
			_ = f.Close()
			return func() { _ = os.Remove(path) }, true
		}
		if !os.IsExist(err) {
			return noop, false
		}
		info, statErr := os.Stat(path)
		if statErr != nil || time.Since(info.ModTime()) < LockStaleAfter {
			return noop, false
		}
		_ = os.Remove(path)
	}
	return noop, false
}
