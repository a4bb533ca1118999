package usecase

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrInvalidMetadata = errors.New("invalid torrent metadata")
	ErrEngine          = errors.New("engine error")
	ErrEngineTimeout   = errors.New("engine timeout")
	ErrRepository      = errors.New("repository error")
)

func wrapEngine(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrEngineTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrEngine, err)
}

func wrapRepo(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrRepository, err)
}
