// Package scheduler runs the packaging pipeline for several targets concurrently.
package scheduler

import (
	"context"
	"runtime"
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/engine/pipeline"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// TaskStatus represents the status of a target.
type TaskStatus string

const (
	// StatusPending indicates the target is waiting to be packaged.
	StatusPending TaskStatus = "Pending"
	// StatusRunning indicates the target is currently being packaged.
	StatusRunning TaskStatus = "Running"
	// StatusCompleted indicates the target was packaged successfully.
	StatusCompleted TaskStatus = "Completed"
	// StatusFailed indicates packaging the target failed.
	StatusFailed TaskStatus = "Failed"
	// StatusCached indicates an existing package was reused.
	StatusCached TaskStatus = "Cached"
)

// Packager plans and runs a single target.
type Packager interface {
	Plan(recipe *domain.Recipe, platform domain.Platform, overrides domain.OptionSet) (domain.PackagePlan, error)
	Run(ctx context.Context, req pipeline.Request, plan domain.PackagePlan) (domain.PackageResult, error)
}

// Scheduler fans packaging out over targets.
type Scheduler struct {
	packager Packager

	mu         sync.RWMutex
	taskStatus map[string]TaskStatus
}

// NewScheduler creates a new Scheduler.
func NewScheduler(packager Packager) *Scheduler {
	return &Scheduler{
		packager:   packager,
		taskStatus: make(map[string]TaskStatus),
	}
}

func (s *Scheduler) updateStatus(fingerprint string, status TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskStatus[fingerprint] = status
}

// Status returns the status of the target planned under fingerprint.
func (s *Scheduler) Status(fingerprint string) TaskStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.taskStatus[fingerprint]
}

// Run packages every target and returns one result per target, in order.
//
// All targets are planned before anything is built, so a misconfigured
// environment is reported before any build starts. Targets sharing a
// fingerprint are packaged once. The first failure cancels the remaining
// targets. jobs limits the number of concurrent builds; zero or less means
// one per CPU.
func (s *Scheduler) Run(ctx context.Context, req pipeline.Request, targets []domain.Platform, jobs int) ([]domain.PackageResult, error) {
	if len(targets) == 0 {
		return nil, zerr.Wrap(domain.ErrNoTargets, "nothing to package")
	}
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	plans := make([]domain.PackagePlan, len(targets))
	for i, target := range targets {
		plan, err := s.packager.Plan(req.Recipe, target, req.Overrides)
		if err != nil {
			return nil, err
		}
		plans[i] = plan
	}

	// First index of every distinct fingerprint.
	owners := make(map[string]int, len(plans))
	var unique []int
	for i, plan := range plans {
		if _, ok := owners[plan.Fingerprint]; ok {
			continue
		}
		owners[plan.Fingerprint] = i
		unique = append(unique, i)
		s.updateStatus(plan.Fingerprint, StatusPending)
	}

	results := make([]domain.PackageResult, len(plans))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for _, i := range unique {
		plan := plans[i]
		g.Go(func() error {
			s.updateStatus(plan.Fingerprint, StatusRunning)
			res, err := s.packager.Run(ctx, req, plan)
			if err != nil {
				s.updateStatus(plan.Fingerprint, StatusFailed)
				return err
			}
			if res.Cached {
				s.updateStatus(plan.Fingerprint, StatusCached)
			} else {
				s.updateStatus(plan.Fingerprint, StatusCompleted)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, plan := range plans {
		owner := owners[plan.Fingerprint]
		if owner == i {
			continue
		}
		// Later duplicates share the package of the first occurrence.
		results[i] = domain.PackageResult{
			Platform: plan.Platform,
			Record:   results[owner].Record,
			Cached:   true,
		}
	}
	return results, nil
}
