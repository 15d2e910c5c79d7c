package uc

import (
	"context"
	"fmt"
	"time"

	authmodel "github.com/compozy/defaultdesk/engine/auth/model"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/policy"
	"github.com/compozy/defaultdesk/engine/stats/model"
	"golang.org/x/sync/errgroup"
)

type Count struct {
	repo      Repository
	actor     *authmodel.Principal
	dimension model.Dimension
	year      int
	timeout   core.Timeouts
}

func NewCount(
	repo Repository,
	actor *authmodel.Principal,
	dimension model.Dimension,
	year int,
	timeouts core.Timeouts,
) *Count {
	return &Count{repo: repo, actor: actor, dimension: dimension, year: year, timeout: timeouts}
}

func (uc *Count) Execute(ctx context.Context) ([]*model.Bucket, error) {
	if err := policy.Require(uc.actor, policy.ActionView, policy.Of(policy.KindStats)); err != nil {
		return nil, err
	}
	if _, err := model.ParseDimension(string(uc.dimension)); err != nil {
		return nil, core.BadRequest(err)
	}
	window, err := model.YearWindow(uc.year)
	if err != nil {
		return nil, core.BadRequest(err)
	}
	return count(ctx, uc.repo, uc.dimension, window, uc.timeout.Operation)
}

type Summarize struct {
	repo    Repository
	actor   *authmodel.Principal
	year    int
	timeout core.Timeouts
}

func NewSummarize(repo Repository, actor *authmodel.Principal, year int, timeouts core.Timeouts) *Summarize {
	return &Summarize{repo: repo, actor: actor, year: year, timeout: timeouts}
}

// Execute runs both breakdowns concurrently; either failure fails the whole.
func (uc *Summarize) Execute(ctx context.Context) (*model.Summary, error) {
	if err := policy.Require(uc.actor, policy.ActionView, policy.Of(policy.KindStats)); err != nil {
		return nil, err
	}
	window, err := model.YearWindow(uc.year)
	if err != nil {
		return nil, core.BadRequest(err)
	}
	out := &model.Summary{Year: uc.year}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.Industry, err = count(gctx, uc.repo, model.DimensionIndustry, window, uc.timeout.Operation)
		return err
	})
	g.Go(func() error {
		var err error
		out.Region, err = count(gctx, uc.repo, model.DimensionRegion, window, uc.timeout.Operation)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func count(
	ctx context.Context,
	repo Repository,
	dim model.Dimension,
	window model.Window,
	timeout time.Duration,
) ([]*model.Bucket, error) {
	buckets, err := core.WithTimeoutResult(ctx, "count approvals by "+string(dim), timeout,
		func(ctx context.Context) ([]*model.Bucket, error) {
			return repo.CountApproved(ctx, dim, window)
		})
	if err != nil {
		if core.CodeOf(err) != "" {
			return nil, err
		}
		return nil, fmt.Errorf("failed to count approvals by %s: %w", dim, err)
	}
	if buckets == nil {
		buckets = []*model.Bucket{}
	}
	return buckets, nil
}
