package jsonstorage

import "go.uber.org/zap"

type options struct {
	logger *zap.Logger
	dir    string
}

var defaultOptions = options{
	logger: zap.NewNop(),
	dir:    "output",
}

type Option func(opts *options)

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

func WithDir(dir string) Option {
	return func(opts *options) {
		opts.dir = dir
	}
}
