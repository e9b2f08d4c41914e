// Package service runs the long-lived parts of annosync side by side.
package service

import (
	"context"
	"io/ioutil"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// Service describes a unit of work that runs as part of a Group.
type Service interface {
	// Name returns the service name.
	Name() string

	// Run executes the service and blocks until it completes, the context
	// gets cancelled or an error occurs.
	Run(context.Context) error
}

// Group runs a set of services side by side. The first service to exit
// stops the rest.
type Group struct {
	Services []Service

	// The logger for member exits. If not defined an output-discarding
	// logger will be used instead.
	Logger *logrus.Entry
}

type memberExit struct {
	name    string
	err     error
	elapsed time.Duration
}

// Run executes all services using the provided context and blocks until
// every one of them has exited. It returns the accumulated service errors.
// Members that fail with context.Canceled because the group stopped them
// are not reported; cancellation of ctx itself is.
func (g Group) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := g.Logger
	if logger == nil {
		logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}

	runCtx, cancelFn := context.WithCancel(ctx)
	defer cancelFn()

	exitCh := make(chan memberExit, len(g.Services))
	for _, s := range g.Services {
		go func(s Service) {
			started := time.Now()
			err := s.Run(runCtx)
			exitCh <- memberExit{name: s.Name(), err: err, elapsed: time.Since(started)}
			cancelFn()
		}(s)
	}

	var err error
	for i := 0; i < len(g.Services); i++ {
		exit := <-exitCh
		exitLogger := logger.WithFields(logrus.Fields{
			"service": exit.name,
			"elapsed": exit.elapsed.String(),
		})
		if i == 0 && len(g.Services) > 1 {
			exitLogger.Info("service exited; stopping group")
		}

		switch {
		case exit.err == nil:
			exitLogger.Debug("service stopped")
		case ctx.Err() == nil && xerrors.Is(exit.err, context.Canceled):
			exitLogger.Debug("service stopped by group")
		default:
			exitLogger.WithField("err", exit.err.Error()).Error("service failed")
			err = multierror.Append(err, xerrors.Errorf("%s: %w", exit.name, exit.err))
		}
	}
	return err
}
