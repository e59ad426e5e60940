package expression

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/r3e-network/substrate-core/kernelerr"
)

// entryPoint is the function name every compiled expression source must
// define: function evaluate(params) { ... }.
const entryPoint = "evaluate"

// nonDeterminismMarkers are rejected outright at compile time (spec §6
// "reject obvious non-determinism markers"). They don't catch everything —
// the registry's sampling cross-check (spec §4.2) is the second line of
// defense — but they catch the obvious cases cheaply.
var nonDeterminismMarkers = []string{
	"Date.now", "new Date", "Math.random", "require(", "import ",
	"XMLHttpRequest", "fetch(", "WebAssembly", "process.",
}

// CompileOptions bounds the sandbox the expression-source mini-language runs
// under.
type CompileOptions struct {
	MaxSourceBytes  int
	InterruptAfter  time.Duration
}

// DefaultCompileOptions mirrors the defaults in internal/coreconfig.
func DefaultCompileOptions() CompileOptions {
	return CompileOptions{MaxSourceBytes: 4096, InterruptAfter: 50 * time.Millisecond}
}

// Compile validates and compiles expression source into a KindComposed
// Expression. The callable creates a fresh goja.Runtime per Invoke — goja
// runtimes are not safe for concurrent use, so sharing one across
// invocations would violate the non-blocking, contention-free operation
// requirement in spec §5.
func Compile(source string, opts CompileOptions) (Expression, error) {
	if opts.MaxSourceBytes <= 0 {
		opts = DefaultCompileOptions()
	}
	if len(source) > opts.MaxSourceBytes {
		return Expression{}, kernelerr.ExpressionSourceRejected(
			fmt.Sprintf("source exceeds %d byte budget", opts.MaxSourceBytes))
	}
	for _, marker := range nonDeterminismMarkers {
		if strings.Contains(source, marker) {
			return Expression{}, kernelerr.ExpressionSourceRejected(
				fmt.Sprintf("source contains disallowed construct %q", marker))
		}
	}

	// Compile once up front purely to surface syntax errors early; each
	// Invoke still builds its own runtime from the same source text.
	probe := goja.New()
	sandbox(probe)
	if _, err := probe.RunString(source); err != nil {
		return Expression{}, kernelerr.ExpressionSourceRejected(fmt.Sprintf("syntax error: %v", err))
	}
	if _, ok := goja.AssertFunction(probe.Get(entryPoint)); !ok {
		return Expression{}, kernelerr.ExpressionSourceRejected(
			fmt.Sprintf("source must define function %s(params)", entryPoint))
	}

	call := func(params Params) (Value, error) {
		return evaluate(source, params, opts)
	}

	return New(KindComposed, source, call), nil
}

// sandbox strips the host capabilities a pure expression must never see:
// no clock, no randomness, no module loader, no console. Deleting these
// from the runtime's global object is the first line of defense against
// non-determinism and I/O; it is not itself sufficient (a closure could
// still capture a non-deterministic Go value), which is why the registry
// also does sampling-based determinism checks.
func sandbox(vm *goja.Runtime) {
	for _, name := range []string{"Date", "Math", "require", "console", "Function", "WebAssembly"} {
		_ = vm.GlobalObject().Delete(name)
	}
}

func evaluate(source string, params Params, opts CompileOptions) (Value, error) {
	vm := goja.New()
	sandbox(vm)

	done := make(chan struct{})
	interrupt := opts.InterruptAfter
	if interrupt <= 0 {
		interrupt = DefaultCompileOptions().InterruptAfter
	}
	go func() {
		select {
		case <-time.After(interrupt):
			vm.Interrupt("expression evaluation timed out")
		case <-done:
		}
	}()
	defer close(done)

	if _, err := vm.RunString(source); err != nil {
		return nil, kernelerr.ExpressionEvaluationFailed(err)
	}

	fn, ok := goja.AssertFunction(vm.Get(entryPoint))
	if !ok {
		return nil, kernelerr.ExpressionSourceRejected(fmt.Sprintf("source must define function %s(params)", entryPoint))
	}

	result, err := fn(goja.Undefined(), vm.ToValue(map[string]any(params)))
	if err != nil {
		return nil, kernelerr.ExpressionEvaluationFailed(err)
	}
	if result == nil || goja.IsUndefined(result) || goja.IsNull(result) {
		return nil, nil
	}

	exported := result.Export()
	// Round-trip through JSON so the exported value is built only of plain
	// Go scalars/maps/slices — never a goja-internal type a caller could
	// use to reach back into a (now-discarded) runtime.
	raw, err := json.Marshal(exported)
	if err != nil {
		return exported, nil
	}
	var plain any
	if err := json.Unmarshal(raw, &plain); err != nil {
		return exported, nil
	}
	return plain, nil
}
