// Package retry contains code to retry operations with an exponential
// backoff whose sleep times are randomly jittered.
package retry

import (
	"context"
	"math/rand"
	"time"
)

// Policy controls the sleep between attempts. The mean sleep starts
// at Initial and doubles after each attempt until it exceeds Final.
type Policy struct {
	Initial time.Duration
	Final   time.Duration
}

// Default is the policy used by Retry.
var Default = Policy{Initial: 250 * time.Millisecond, Final: 2 * time.Second}

const (
	meanFactor  = 2.0
	stdevFactor = 0.05
)

// Retry retries op using the Default policy.
func Retry(ctx context.Context, op func() error) error {
	return Default.Do(ctx, op)
}

// Do retries op until it succeeds, the context expires, or we've
// attempted to retry the operation for too much time. It returns
// the error of the last attempt or the context error.
func (p Policy) Do(ctx context.Context, op func() error) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	var err error
	for mean := float64(p.Initial); mean <= float64(p.Final); mean *= meanFactor {
		if err = op(); err == nil {
			return nil
		}
		stdev := stdevFactor * mean
		timer := time.NewTimer(time.Duration(rng.NormFloat64()*stdev + mean))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}
