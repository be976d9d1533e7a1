package ports

// Locker takes advisory, process-wide locks on paths.
//
//go:generate go run go.uber.org/mock/mockgen -source=locker.go -destination=mocks/mock_locker.go -package=mocks
type Locker interface {
	// Lock acquires the lock guarding path without blocking. It fails with
	// domain.ErrLocked when another holder exists.
	Lock(path string) (unlock func() error, err error)
}
