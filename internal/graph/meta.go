package graph

import "github.com/stealify-backports/rollup/internal/logger"

// ImportDescription is one `import` binding recorded against the local name
// it's bound to in the importing module (spec.md §3 "importDescriptions",
// §4.3 "Add-import semantics"). Module is nil until the owning graph's
// Link pass resolves Source to a concrete module.
type ImportDescription struct {
	Source  string
	Name    string // "default", "*", or the imported name
	Local   string
	DeclPos logger.Loc

	Module   *Module
	External *ExternalModule
}

// ReexportDescription is one `export { a as c } from "source"` or
// `export * as ns from "source"` binding, keyed by the exported name it
// introduces (spec.md §3 "reexportDescriptions").
type ReexportDescription struct {
	Source    string
	LocalName string
	DeclPos   logger.Loc

	Module   *Module
	External *ExternalModule
}

// ExportDescription is a direct (non-reexport) export, keyed by the name it
// exposes (spec.md §3 "exports"). IsMissingShim marks an entry added when
// shimMissingExports shimmed a name that was never actually declared; every
// such entry resolves to the module's single ExportShimVariable (spec.md
// §4.4 step 7).
type ExportDescription struct {
	LocalName     string
	Identifier    string // non-empty when add-export captured an assigned name, e.g. `export default function foo(){}`
	IsMissingShim bool
}
