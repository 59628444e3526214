// Package backend declares the contract an external code generator
// implements to turn a linked ir.Package into target-language source
// text. No concrete back-end ships here: producing target-language
// output is a declared non-goal, this package only fixes the seam.
package backend

import (
	"github.com/reprotoc/reproto/env"
	"github.com/reprotoc/reproto/ir"
)

// OutputSink receives a back-end's generated files. Write is called
// once per output file with a back-end-chosen relative path.
type OutputSink interface {
	Write(path string, data []byte) error
}

// Backend compiles one resolved, linked package into output, writing
// everything it produces through out. The passed env gives a backend
// access to the wider environment (other loaded packages, use-alias
// bindings) when a generated reference needs to cross a package
// boundary, e.g. resolving an imported type's target-language name.
type Backend interface {
	Compile(e *env.Environment, pkg *ir.Package, out OutputSink) error
}
