package morph

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// globalDebug enables the extra tree checks below. Set through
// Stage.SetDebugMode.
var globalDebug bool

// debugLogger receives tree warnings while debug mode is on.
var debugLogger = newLogger(os.Stderr, log.WarnLevel)

// newLogger creates a prefixed logger writing to w at the given level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix: "morph",
		Level:  level,
	})
}

// defaultLogger is used by an Animator whose config carries no logger.
func defaultLogger() *log.Logger {
	return log.Default().WithPrefix("morph")
}

// debugCheckDisposed panics with a descriptive message when a disposed
// element is used in a tree operation. Only called in debug mode.
func debugCheckDisposed(e *Element, op string) {
	if e.disposed {
		panic(fmt.Sprintf("morph debug: %s on disposed element %q", op, e.Name))
	}
}

// debugCheckTreeDepth warns if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(e *Element) {
	depth := 0
	for p := e; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		debugLogger.Warn("tree depth exceeds threshold", "depth", depth, "max", debugMaxTreeDepth, "element", e.Name)
	}
}

// debugCheckChildCount warns if an element has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(e *Element) {
	if len(e.children) > debugMaxChildCount {
		debugLogger.Warn("child count exceeds threshold", "element", e.Name, "children", len(e.children), "max", debugMaxChildCount)
	}
}
