package ports

// Verifier checks that files recorded for a package are still present.
//
//go:generate go run go.uber.org/mock/mockgen -source=verifier.go -destination=mocks/mock_verifier.go -package=mocks
type Verifier interface {
	VerifyOutputs(root string, files []string) (bool, error)
}
