package expression

import (
	"testing"
	"time"
)

func TestConstant_Identity(t *testing.T) {
	a := Constant("constant:42", 42)
	b := Constant("constant:42", 42)
	if !a.Identity().Equal(b.Identity()) {
		t.Fatalf("expected identical source to produce identical identity")
	}
	got, err := a.Invoke(nil)
	if err != nil {
		t.Fatalf("Invoke() error: %v", err)
	}
	if got != 42 {
		t.Fatalf("Invoke() = %v, want 42", got)
	}
}

func TestCompile_EvaluatesEntryPoint(t *testing.T) {
	expr, err := Compile(`function evaluate(params) { return params.a + params.b; }`, DefaultCompileOptions())
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if expr.Kind() != KindComposed {
		t.Fatalf("Kind() = %v, want KindComposed", expr.Kind())
	}

	got, err := expr.Invoke(Params{"a": 2.0, "b": 3.0})
	if err != nil {
		t.Fatalf("Invoke() error: %v", err)
	}
	if got != 5.0 {
		t.Fatalf("Invoke() = %v, want 5", got)
	}
}

func TestCompile_DeterministicAcrossInvocations(t *testing.T) {
	expr, err := Compile(`function evaluate(params) { return params.x * 2; }`, DefaultCompileOptions())
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	first, err := expr.Invoke(Params{"x": 21.0})
	if err != nil {
		t.Fatalf("Invoke() error: %v", err)
	}
	second, err := expr.Invoke(Params{"x": 21.0})
	if err != nil {
		t.Fatalf("Invoke() error: %v", err)
	}
	if first != second {
		t.Fatalf("expected repeated invocation to agree: %v != %v", first, second)
	}
}

func TestCompile_RejectsMissingEntryPoint(t *testing.T) {
	if _, err := Compile(`function notEvaluate() { return 1; }`, DefaultCompileOptions()); err == nil {
		t.Fatalf("expected error for missing evaluate()")
	}
}

func TestCompile_RejectsNonDeterminismMarkers(t *testing.T) {
	for _, src := range []string{
		`function evaluate() { return Date.now(); }`,
		`function evaluate() { return Math.random(); }`,
	} {
		if _, err := Compile(src, DefaultCompileOptions()); err == nil {
			t.Fatalf("expected rejection for source %q", src)
		}
	}
}

func TestCompile_RejectsOversizeSource(t *testing.T) {
	huge := "function evaluate(params) { return " + string(make([]byte, 10000)) + "1; }"
	if _, err := Compile(huge, DefaultCompileOptions()); err == nil {
		t.Fatalf("expected rejection for oversize source")
	}
}

func TestCompile_InterruptsLongRunningScript(t *testing.T) {
	expr, err := Compile(
		`function evaluate(params) { while (true) {} }`,
		CompileOptions{MaxSourceBytes: 4096, InterruptAfter: 10 * time.Millisecond},
	)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if _, err := expr.Invoke(nil); err == nil {
		t.Fatalf("expected interrupt error for infinite loop")
	}
}
