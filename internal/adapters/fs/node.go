package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/adapters/logger"
	"go.trai.ch/kiln/internal/core/ports"
)

const (
	WalkerNodeID    graft.ID = "adapter.fs.walker"
	AssemblerNodeID graft.ID = "adapter.fs.assembler"
	HasherNodeID    graft.ID = "adapter.fs.hasher"
	VerifierNodeID  graft.ID = "adapter.fs.verifier"
	LockerNodeID    graft.ID = "adapter.fs.locker"
)

func init() {
	// Walker Node (Concrete implementation needed by Hasher and Assembler)
	graft.Register(graft.Node[*Walker]{
		ID:        WalkerNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (*Walker, error) {
			return NewWalker(), nil
		},
	})

	graft.Register(graft.Node[ports.Assembler]{
		ID:        AssemblerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{WalkerNodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.Assembler, error) {
			walker, err := graft.Dep[*Walker](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewAssembler(walker, log), nil
		},
	})

	graft.Register(graft.Node[ports.Hasher]{
		ID:        HasherNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{WalkerNodeID},
		Run: func(ctx context.Context) (ports.Hasher, error) {
			walker, err := graft.Dep[*Walker](ctx)
			if err != nil {
				return nil, err
			}
			return NewHasher(walker), nil
		},
	})

	graft.Register(graft.Node[ports.Verifier]{
		ID:        VerifierNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.Verifier, error) {
			return NewVerifier(), nil
		},
	})

	graft.Register(graft.Node[ports.Locker]{
		ID:        LockerNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.Locker, error) {
			return NewLocker(), nil
		},
	})
}
