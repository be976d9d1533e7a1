package ports

// Hasher computes content checksums of a package tree.
//
//go:generate go run go.uber.org/mock/mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// Checksums returns the hex digest of every regular file under root,
	// keyed by slash-separated relative path.
	Checksums(root string) (map[string]string, error)
}
