package s3

// semaphore limits the number of concurrent requests a Store issues
// against the client's connection pool, ported from the teacher's
// internal/backend/sema package.
type semaphore chan struct{}

func newSemaphore(n uint) semaphore {
	return make(semaphore, n)
}

func (s semaphore) GetToken()     { s <- struct{}{} }
func (s semaphore) ReleaseToken() { <-s }
