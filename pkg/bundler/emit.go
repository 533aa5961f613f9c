// SPDX-License-Identifier: MPL-2.0

package bundler

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"slices"
	"strconv"
	"strings"
)

// Artifact is a linked bundle.
type Artifact struct {
	// Namespace is the global name the entry's exports are published under.
	Namespace string
	// Entry is the entry module ID.
	Entry string
	// Order is the evaluation order the modules were laid out in; a module's
	// slot in the bundle is its index in Order.
	Order Order
	// Code is the complete script.
	Code []byte
}

// WriteTo writes the script to w.
func (a *Artifact) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(a.Code)
	return int64(n), err
}

// Digest returns the hex-encoded SHA-256 of the script.
func (a *Artifact) Digest() string {
	sum := sha256.Sum256(a.Code)
	return hex.EncodeToString(sum[:])
}

const (
	umdHeader = `(function (root, factory) {
  if (typeof exports === "object" && typeof module !== "undefined") {
    module.exports = factory();
  } else if (typeof define === "function" && define.amd) {
    define([], factory);
  } else {
    var g = typeof globalThis !== "undefined" ? globalThis : typeof self !== "undefined" ? self : root;
`
	umdFactoryOpen = `  }
})(this, function () {
var modules = [
`
	runtime = `];
var cache = {};
function load(slot) {
  var cached = cache[slot];
  if (cached) {
    return cached.exports;
  }
  var module = cache[slot] = { exports: {} };
  var entry = modules[slot];
  entry[0].call(module.exports, function (name) {
    if (!Object.prototype.hasOwnProperty.call(entry[1], name)) {
      var err = new Error("Cannot find module '" + name + "'");
      err.code = "MODULE_NOT_FOUND";
      throw err;
    }
    return load(entry[1][name]);
  }, module, module.exports);
  return module.exports;
}
`
)

// Emit links the modules of g, laid out in order, into a standalone script
// that publishes the entry's exports under namespace. A dotted namespace
// ("acme.tools") creates the intermediate objects.
//
// Emit performs no I/O. It returns an *EmitError when namespace is empty or
// has an empty segment, or when order is not exactly the set of g's modules.
func Emit(g *Graph, order Order, namespace string) (*Artifact, error) {
	segments, err := splitNamespace(namespace)
	if err != nil {
		return nil, err
	}
	if g == nil || g.Modules[g.Entry] == nil {
		return nil, &EmitError{Reason: "graph has no entry module"}
	}
	if err := checkOrder(g, order); err != nil {
		return nil, err
	}

	slot := make(map[string]int, len(order))
	for i, id := range order {
		slot[id] = i
	}

	var b strings.Builder
	b.WriteString(umdHeader)
	writeGlobalAssignment(&b, segments)
	b.WriteString(umdFactoryOpen)

	for _, id := range order {
		m := g.Modules[id]
		b.WriteString("/* ")
		b.WriteString(strings.ReplaceAll(id, "*/", "* /"))
		b.WriteString(" */ [function (require, module, exports) {\n")
		b.Write(m.Source)
		if len(m.Source) > 0 && m.Source[len(m.Source)-1] != '\n' {
			b.WriteByte('\n')
		}
		b.WriteString("}, {")
		for i, raw := range m.Dependencies {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(jsString(raw))
			b.WriteString(": ")
			b.WriteString(strconv.Itoa(slot[m.Resolved[raw]]))
		}
		b.WriteString("}],\n")
	}

	b.WriteString(runtime)
	b.WriteString("return load(")
	b.WriteString(strconv.Itoa(slot[g.Entry]))
	b.WriteString(");\n});\n")

	return &Artifact{
		Namespace: namespace,
		Entry:     g.Entry,
		Order:     slices.Clone(order),
		Code:      []byte(b.String()),
	}, nil
}

// writeGlobalAssignment emits `g["a"] = g["a"] || {}; g["a"]["b"] = factory();`.
func writeGlobalAssignment(b *strings.Builder, segments []string) {
	target := "g"
	for i, seg := range segments {
		target += "[" + jsString(seg) + "]"
		b.WriteString("    ")
		b.WriteString(target)
		if i == len(segments)-1 {
			b.WriteString(" = factory();\n")
		} else {
			b.WriteString(" = " + target + " || {};\n")
		}
	}
}

func splitNamespace(namespace string) ([]string, error) {
	if strings.TrimSpace(namespace) == "" {
		return nil, &EmitError{Reason: "namespace must not be empty"}
	}
	segments := strings.Split(namespace, ".")
	for _, seg := range segments {
		if strings.TrimSpace(seg) == "" {
			return nil, &EmitError{Reason: "namespace " + strconv.Quote(namespace) + " has an empty segment"}
		}
	}
	return segments, nil
}

func checkOrder(g *Graph, order Order) error {
	var missing, extra, duplicated []string
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		switch {
		case g.Modules[id] == nil:
			extra = append(extra, id)
		case seen[id]:
			duplicated = append(duplicated, id)
		}
		seen[id] = true
	}
	for _, id := range g.IDs() {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	if len(missing)+len(extra)+len(duplicated) > 0 {
		return newOrderMismatch(missing, extra, duplicated)
	}
	return nil
}

// jsString quotes s as a JavaScript string literal. JSON string syntax is a
// subset of JavaScript's, and the encoder escapes U+2028 and U+2029.
func jsString(s string) string {
	quoted, err := json.Marshal(s)
	if err != nil {
		return strconv.Quote(s)
	}
	return string(quoted)
}
