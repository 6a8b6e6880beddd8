package app

import (
	"context"
	"fmt"

	"github.com/skillcoder/nodechaos-controller/internal/domain"
)

// remoteDisabled stands in for the SSH executor when no credentials are configured.
type remoteDisabled struct{}

var errRemoteDisabled = fmt.Errorf("%w: ssh credentials are not configured", domain.ErrRemoteExecution)

func (remoteDisabled) Run(context.Context, string, string) (domain.ExecResult, error) {
	return domain.ExecResult{}, errRemoteDisabled
}

func (remoteDisabled) RunBackground(context.Context, string, string) (domain.ProcessHandle, error) {
	return nil, errRemoteDisabled
}
