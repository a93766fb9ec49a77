package render

import (
	"context"
	"sync"
	"time"

	"github.com/medflow/clinic-platform/pkg/logging"
)

// Engine turns a denormalized prescription view into PDF bytes. Implementations
// wrap a headless rendering process and are not safe for concurrent use.
type Engine interface {
	RenderPrescriptionPDF(ctx context.Context, view *PrescriptionView) ([]byte, error)
	Close() error
}

// Pool owns the single rendering engine instance for the process and
// serializes concurrent render requests against it. Every call runs under a
// timeout since headless rendering can hang indefinitely.
type Pool struct {
	engine  Engine
	timeout time.Duration
	logger  *logging.Logger

	sem chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewPool wraps engine with capacity-one access control. The engine is owned
// by the pool from this point and is shut down by Close.
func NewPool(engine Engine, timeout time.Duration, logger *logging.Logger) *Pool {
	if engine == nil {
		panic("render: engine required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Pool{
		engine:  engine,
		timeout: timeout,
		logger:  logger,
		sem:     make(chan struct{}, 1),
	}
}

// RenderPrescriptionPDF renders one prescription, waiting for exclusive access
// to the engine. The engine slot is released on every exit path.
func (p *Pool) RenderPrescriptionPDF(ctx context.Context, view *PrescriptionView) ([]byte, error) {
	if view == nil {
		return nil, &RenderError{Err: ErrNilView}
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	p.mu.Unlock()

	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-p.sem }()

	renderCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	pdf, err := p.engine.RenderPrescriptionPDF(renderCtx, view)
	if err != nil {
		p.logger.Error("prescription render failed",
			"prescription_id", view.PrescriptionID,
			"error", err,
			"elapsed", time.Since(start).String(),
		)
		return nil, &RenderError{PrescriptionID: view.PrescriptionID, Err: err}
	}

	p.logger.Debug("prescription rendered",
		"prescription_id", view.PrescriptionID,
		"bytes", len(pdf),
		"elapsed", time.Since(start).String(),
	)
	return pdf, nil
}

// Close shuts down the underlying engine. Renders in flight finish first;
// later calls fail with ErrPoolClosed.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	// Wait for an in-flight render to drain before tearing the engine down.
	p.sem <- struct{}{}
	defer func() { <-p.sem }()

	return p.engine.Close()
}
