package compiler_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wldfngrs/olive/lang/chunk"
	"github.com/wldfngrs/olive/lang/compiler"
	"github.com/wldfngrs/olive/lang/value"
)

// compile is the shared entry point for every test: a fresh constants pool
// and global table, exactly as a one-shot script run would build them.
func compile(t *testing.T, src string) *value.ObjFunction {
	t.Helper()
	fn, errs := compiler.Compile([]byte(src), &chunk.ValueArray{}, compiler.NewGlobalTable(), value.NewInterner())
	require.Empty(t, errs, "unexpected compile errors for %q", src)
	require.NotNil(t, fn)
	return fn
}

func compileErr(t *testing.T, src string) compiler.ErrorList {
	t.Helper()
	fn, errs := compiler.Compile([]byte(src), &chunk.ValueArray{}, compiler.NewGlobalTable(), value.NewInterner())
	require.Nil(t, fn)
	require.NotEmpty(t, errs)
	return errs
}

func dis(fn *value.ObjFunction) string {
	return fn.Chunk.Disassemble("test")
}

// disAll disassembles fn and every function compiled alongside it. Nested
// functions and methods each own a chunk of their own and are reachable only
// through the shared constants pool, so their code never appears in dis(fn).
func disAll(fn *value.ObjFunction) string {
	var b strings.Builder
	b.WriteString(dis(fn))
	for _, c := range fn.Chunk.Constants.Values {
		if nested, ok := c.(*value.ObjFunction); ok {
			b.WriteString(nested.Chunk.Disassemble(nested.String()))
		}
	}
	return b.String()
}

func TestArithmeticPrecedence(t *testing.T) {
	fn := compile(t, "print 1 + 2 * 3;")
	out := dis(fn)
	require.Contains(t, out, "CONSTANT")
	require.Contains(t, out, "MULTIPLY")
	require.Contains(t, out, "ADD")
	require.Contains(t, out, "PRINT")
}

func TestTernaryIsEager(t *testing.T) {
	fn := compile(t, "print true ? 1 : 2;")
	require.Contains(t, dis(fn), "TERNARY")
}

func TestGlobalVarDeclarationAndUse(t *testing.T) {
	fn := compile(t, "var x = 1;\nprint x;")
	out := dis(fn)
	require.Contains(t, out, "DEFINE_GLOBAL")
	require.Contains(t, out, "GET_GLOBAL")
}

func TestConstGlobalReassignmentRejected(t *testing.T) {
	errs := compileErr(t, "const x = 1;\nx = 2;")
	require.NotEmpty(t, errs)
}

func TestConstLocalReassignmentRejected(t *testing.T) {
	errs := compileErr(t, "{\n  const x = 1;\n  x = 2;\n}")
	require.NotEmpty(t, errs)
}

func TestLocalShadowingRejectedInSameScope(t *testing.T) {
	errs := compileErr(t, "{\n  var x = 1;\n  var x = 2;\n}")
	require.NotEmpty(t, errs)
}

func TestSelfReferentialLocalInitializerRejected(t *testing.T) {
	errs := compileErr(t, "{\n  var x = x;\n}")
	require.NotEmpty(t, errs)
}

func TestLocalDeclarationEmitsNoGlobalOps(t *testing.T) {
	fn := compile(t, "{\n  var x = 1;\n  print x;\n}")
	out := dis(fn)
	require.NotContains(t, out, "DEFINE_GLOBAL")
	require.Contains(t, out, "GET_LOCAL")
}

func TestUpvalueCaptureAcrossNestedClosures(t *testing.T) {
	src := `
def outer() {
  var x = 1;
  def middle() {
    def inner() {
      return x;
    }
    return inner;
  }
  return middle;
}
`
	fn := compile(t, src)
	out := disAll(fn)
	require.Contains(t, out, "CLOSURE")
	require.Contains(t, out, "upvalue")
}

func TestRecursiveFunctionCallsItself(t *testing.T) {
	src := `
def fact(n) {
  if (n < 2) return 1;
  return n * fact(n - 1);
}
`
	fn := compile(t, src)
	out := dis(fn)
	require.Contains(t, out, "DEFINE_GLOBAL")
	require.Contains(t, out, "CLOSURE")
}

func TestClassWithoutBase(t *testing.T) {
	src := `
class Point {
  init(x, y) {
    this.x = x;
    this.y = y;
  }
}
`
	fn := compile(t, src)
	out := dis(fn)
	require.Contains(t, out, "CLASS")
	require.Contains(t, out, "METHOD")
	require.NotContains(t, out, "INHERIT")
}

func TestClassWithBaseAndBaseInvoke(t *testing.T) {
	src := `
class Animal {
  speak() {
    print "...";
  }
}
class Dog : Animal {
  speak() {
    base.speak();
  }
}
`
	fn := compile(t, src)
	out := disAll(fn)
	require.Contains(t, out, "INHERIT")
	require.Contains(t, out, "BASE_INVOKE")
}

func TestBaseOutsideSubclassRejected(t *testing.T) {
	errs := compileErr(t, `
class Animal {
  speak() {
    base.speak();
  }
}
`)
	require.NotEmpty(t, errs)
}

func TestThisOutsideMethodRejected(t *testing.T) {
	errs := compileErr(t, "print this;")
	require.NotEmpty(t, errs)
}

func TestSelfInheritanceRejected(t *testing.T) {
	errs := compileErr(t, "class Loop : Loop {\n}")
	require.NotEmpty(t, errs)
}

func TestWhileLoopEmitsBackwardLoop(t *testing.T) {
	fn := compile(t, "while (true) {\n  print 1;\n}")
	out := dis(fn)
	require.Contains(t, out, "LOOP")
	require.Contains(t, out, "JUMP_IF_FALSE")
}

func TestForLoopAllClausesOptional(t *testing.T) {
	fn := compile(t, "for (;;) {\n  break;\n}")
	out := dis(fn)
	require.Contains(t, out, "LOOP")
	require.Contains(t, out, "BREAK")
}

func TestForLoopIncrementRunsBeforeLoopedBody(t *testing.T) {
	// the increment is compiled before the body and skipped over on the first
	// pass, per the canonical for-loop lowering: one JUMP over the increment
	// plus two LOOPs (increment back to the condition, body back to the
	// increment).
	fn := compile(t, "for (var i = 0; i < 3; i = i + 1) {\n  print i;\n}")
	out := dis(fn)
	require.Contains(t, out, "JUMP")
	require.Contains(t, out, "LOOP")
}

func TestBreakOutsideLoopRejected(t *testing.T) {
	errs := compileErr(t, "break;")
	require.NotEmpty(t, errs)
}

func TestContinueOutsideLoopRejected(t *testing.T) {
	errs := compileErr(t, "continue;")
	require.NotEmpty(t, errs)
}

func TestSwitchFallthroughAndBreak(t *testing.T) {
	src := `
switch (1) {
case 1:
  print 1;
case 2:
  print 2;
  break;
default:
  print 3;
}
`
	fn := compile(t, src)
	out := dis(fn)
	require.Contains(t, out, "SWITCH_EQUAL")
	require.Contains(t, out, "FALLTHROUGH")
	require.Contains(t, out, "BREAK")
}

func TestContinueInsideSwitchForwardsToEnclosingLoop(t *testing.T) {
	src := `
while (true) {
  switch (1) {
  case 1:
    continue;
  }
}
`
	fn := compile(t, src)
	out := dis(fn)
	require.Contains(t, out, "CONTINUE")
	require.Contains(t, out, "LOOP")
}

func TestContinueOutsideAnyLoopInsideSwitchRejected(t *testing.T) {
	errs := compileErr(t, `
switch (1) {
case 1:
  continue;
}
`)
	require.NotEmpty(t, errs)
}

func TestDelAttrStatement(t *testing.T) {
	src := `
class Point {
  init(x) {
    this.x = x;
  }
}
var p = Point(1);
del_attr(p, "x");
`
	fn := compile(t, src)
	require.Contains(t, dis(fn), "DELATTR")
}

func TestStringInterpolationSingleFragment(t *testing.T) {
	fn := compile(t, `var name = "olive";
print "hi ${name}!";`)
	out := dis(fn)
	require.Contains(t, out, "ADD")
}

func TestStringInterpolationChainedFragments(t *testing.T) {
	fn := compile(t, `var a = 1;
var b = 2;
print "${a} and ${b}!";`)
	out := dis(fn)
	// two embedded expressions means at least two ADD instructions.
	count := 0
	for i := 0; i+len("ADD") <= len(out); i++ {
		if out[i:i+len("ADD")] == "ADD" {
			count++
		}
	}
	require.GreaterOrEqual(t, count, 2)
}

func TestReturnOutsideFunctionRejected(t *testing.T) {
	errs := compileErr(t, "return 1;")
	require.NotEmpty(t, errs)
}

func TestInitializerCannotReturnValue(t *testing.T) {
	errs := compileErr(t, `
class Point {
  init(x) {
    return x;
  }
}
`)
	require.NotEmpty(t, errs)
}

func TestInitializerImplicitlyReturnsThis(t *testing.T) {
	fn := compile(t, `
class Point {
  init(x) {
    this.x = x;
  }
}
`)
	// the initializer's own chunk lives in the shared constants pool; it must
	// end in the implicit GET_LOCAL 0 + RETURN that hands back the receiver.
	require.Contains(t, dis(fn), "METHOD")
	var initFn *value.ObjFunction
	for _, c := range fn.Chunk.Constants.Values {
		if f, ok := c.(*value.ObjFunction); ok && f.Name != nil && f.Name.Chars == "init" {
			initFn = f
		}
	}
	require.NotNil(t, initFn)
	code := initFn.Chunk.Code
	require.Equal(t, []byte{byte(chunk.GET_LOCAL), 0, byte(chunk.RETURN)}, code[len(code)-3:])
}

func TestBraceLessIfBody(t *testing.T) {
	fn := compile(t, "if (true) print 1;\nelse print 2;")
	out := dis(fn)
	require.Contains(t, out, "JUMP_IF_FALSE")
	require.Contains(t, out, "JUMP")
}

func TestPanicModeRecoversAtNextStatement(t *testing.T) {
	// the missing name in the first statement should not cascade into a
	// second reported error: synchronize() stops after its ';' and the
	// following `var y = 1;` compiles cleanly.
	errs := compileErr(t, "var = ;\nvar y = 1;")
	require.Len(t, errs, 1)
}

func TestMultipleErrorsAccumulate(t *testing.T) {
	errs := compileErr(t, "var = ;\nvar = ;")
	require.GreaterOrEqual(t, len(errs), 2)
}

func TestErrorsCarryLinePosition(t *testing.T) {
	errs := compileErr(t, "var x = 1;\nx = ;")
	require.Contains(t, errs.Error(), "2:")
}

func TestFunctionArityTooLarge(t *testing.T) {
	src := "def f("
	for i := 0; i < 256; i++ {
		if i > 0 {
			src += ", "
		}
		src += "a" + string(rune('A'+i%26)) + string(rune('0'+i%10))
	}
	src += ") {\n  return 1;\n}"
	errs := compileErr(t, src)
	require.NotEmpty(t, errs)
}

func TestCallArgumentCountTooLarge(t *testing.T) {
	args := ""
	for i := 0; i < 256; i++ {
		if i > 0 {
			args += ", "
		}
		args += "1"
	}
	errs := compileErr(t, "def f() {}\nf("+args+");")
	require.NotEmpty(t, errs)
}

func TestTooManyLocalsInOneFunction(t *testing.T) {
	src := "{\n"
	for i := 0; i < scopeCountForTest+1; i++ {
		src += "var v" + itoa(i) + " = 0;\n"
	}
	src += "}\n"
	errs := compileErr(t, src)
	require.NotEmpty(t, errs)
}

// scopeCountForTest mirrors the unexported scopeCount local/upvalue cap this
// package enforces, kept here rather than exported solely for one test.
const scopeCountForTest = 256

func TestJumpDistanceOverflowRejected(t *testing.T) {
	// a then-body too large for JUMP_IF_FALSE's 16-bit displacement is a
	// compile error, not a silently wrapped offset.
	var src strings.Builder
	src.WriteString("var x = 0;\nif (true) {\n")
	for i := 0; i < 17000; i++ {
		src.WriteString("x = x + 1;\n")
	}
	src.WriteString("}\n")
	errs := compileErr(t, src.String())
	require.NotEmpty(t, errs)
}

func TestLongFormConstantForManyGlobals(t *testing.T) {
	src := ""
	for i := 0; i < 260; i++ {
		src += "var g" + itoa(i) + " = " + itoa(i) + ";\n"
	}
	fn := compile(t, src)
	require.Contains(t, dis(fn), "DEFINE_GLOBAL_LONG")
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := ""
	for n > 0 {
		digits = string(rune('0'+n%10)) + digits
		n /= 10
	}
	return digits
}
