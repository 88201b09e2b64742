// Package sandbox evaluates user-supplied filter scripts in an isolated JavaScript runtime.
//
// Scripts must define:
//
//	function filter(download) { return { skip: false, dir: "x", filename: "y" }; }
//
// Each evaluation gets a fresh runtime holding only the download view and a
// URL constructor. Settings, storage, network and filesystem are unreachable.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"time"
	"variaredirect/internal/domain/consts"
	"variaredirect/internal/domain/errs"
	"variaredirect/internal/domain/logger"
	"variaredirect/internal/models"
	"variaredirect/internal/parsing"

	"github.com/dop251/goja"
)

// FilterFuncName is the function every script must define.
const FilterFuncName = "filter"

// maxCallStackSize bounds script recursion.
const maxCallStackSize = 1024

// Evaluator runs filter scripts.
type Evaluator struct {
	Timeout time.Duration // Zero disables the per-evaluation limit.
}

// NewEvaluator returns an evaluator bounded by timeout.
func NewEvaluator(timeout time.Duration) *Evaluator {
	if timeout < 0 {
		timeout = consts.DefaultSandboxTimeout
	}
	return &Evaluator{Timeout: timeout}
}

// ViewFor builds the restricted view of a download handed to scripts.
func ViewFor(ev models.DownloadEvent) models.FilterView {
	return models.FilterView{
		URL:      ev.URL,
		Filename: parsing.Basename(ev.Filename),
		FileSize: ev.TotalBytes,
		Mime:     ev.Mime,
		Referrer: ev.Referrer,
	}
}

// Evaluate runs script's filter function against view and validates the result.
//
// Errors wrap errs.ErrSandboxEvaluation (compile error, exception, missing
// filter function, timeout) or errs.ErrSandboxShape (invalid return value).
func (e *Evaluator) Evaluate(ctx context.Context, script string, view models.FilterView) (res *models.FilterResult, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	defer func() {
		if p := recover(); p != nil {
			logger.Pl.E("Filter script evaluation panicked: %v", p)
			res, err = nil, fmt.Errorf("%w: %v", errs.ErrSandboxEvaluation, p)
		}
	}()

	vm := goja.New()
	vm.SetMaxCallStackSize(maxCallStackSize)
	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})
	defer stop()

	if err := installURL(vm); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrSandboxEvaluation, err)
	}

	if _, err := vm.RunString(script); err != nil {
		return nil, evalError(err)
	}

	fn, ok := goja.AssertFunction(vm.Get(FilterFuncName))
	if !ok {
		return nil, fmt.Errorf("%w: script does not define a %q function", errs.ErrSandboxEvaluation, FilterFuncName)
	}

	arg, err := viewObject(vm, view)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrSandboxEvaluation, err)
	}

	out, err := fn(goja.Undefined(), arg)
	if err != nil {
		return nil, evalError(err)
	}

	if err := checkSkipPrimitive(out); err != nil {
		return nil, err
	}

	var raw any
	if out != nil {
		raw = out.Export()
	}
	return ValidateResult(raw)
}

// checkSkipPrimitive rejects boxed values such as new Boolean(false), which
// would otherwise export as plain booleans.
func checkSkipPrimitive(out goja.Value) error {
	obj, ok := out.(*goja.Object)
	if !ok || obj == nil {
		return nil
	}
	if _, boxed := obj.Get(resultSkip).(*goja.Object); boxed {
		return fmt.Errorf("%w: %q must be a boolean, got object", errs.ErrSandboxShape, resultSkip)
	}
	return nil
}

// viewObject builds a plain JS object from the view.
func viewObject(vm *goja.Runtime, view models.FilterView) (*goja.Object, error) {
	obj := vm.NewObject()
	fields := []struct {
		key string
		val any
	}{
		{"url", view.URL},
		{"filename", view.Filename},
		{"fileSize", view.FileSize},
		{"mime", view.Mime},
		{"referrer", view.Referrer},
	}
	for _, f := range fields {
		if err := obj.Set(f.key, f.val); err != nil {
			return nil, fmt.Errorf("failed to set %q on download view: %w", f.key, err)
		}
	}
	return obj, nil
}

// evalError converts runtime errors into sandbox evaluation errors.
func evalError(err error) error {
	var overflow *goja.StackOverflowError
	if errors.As(err, &overflow) {
		return fmt.Errorf("%w: call stack exceeded %d frames", errs.ErrSandboxEvaluation, maxCallStackSize)
	}

	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return fmt.Errorf("%w: script interrupted: %v", errs.ErrSandboxEvaluation, interrupted.Value())
	}

	var exception *goja.Exception
	if errors.As(err, &exception) {
		if v := exception.Value(); v != nil {
			return fmt.Errorf("%w: %s", errs.ErrSandboxEvaluation, v.String())
		}
	}
	return fmt.Errorf("%w: %v", errs.ErrSandboxEvaluation, err)
}
