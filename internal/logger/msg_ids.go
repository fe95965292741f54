package logger

// These are the diagnostic codes the tree-shaking core can emit. Fatal codes
// are carried on a *CoreError and abort the operation that raised them;
// advisory codes are only ever passed to Log.AddWarningWithCode and analysis
// continues.
const (
	// Fatal: the external parser reported a syntax error.
	MsgID_ParseError = "PARSE_ERROR"

	// Fatal: an import names an export that does not exist in the target
	// module (and shimMissingExports is off).
	MsgID_MissingExport = "MISSING_EXPORT"

	// Fatal: a re-export chain refers back to a module already being resolved
	// for the same name, outside of an "export *" probe.
	MsgID_CircularReexport = "CIRCULAR_REEXPORT"

	// Fatal: syntheticNamedExports is set but the fallback namespace export
	// itself can't be found.
	MsgID_SyntheticNamedExportsNeedNamespaceExport = "SYNTHETIC_NAMED_EXPORTS_NEED_NAMESPACE_EXPORT"

	// Advisory: "export *" probing found the same name exposed by two or more
	// distinct internal modules.
	MsgID_NamespaceConflict = "NAMESPACE_CONFLICT"

	// Advisory: "export *" probing found the same name exposed by two or more
	// distinct external modules.
	MsgID_AmbiguousExternalNamespaces = "AMBIGUOUS_EXTERNAL_NAMESPACES"

	// Advisory: shimMissingExports is on and a shim was created for a name
	// that isn't actually exported anywhere.
	MsgID_ShimmedExport = "SHIMMED_EXPORT"

	// Advisory: a source-map chain couldn't be consulted to enrich a
	// diagnostic's location with its pre-transform position.
	MsgID_SourcemapError = "SOURCEMAP_ERROR"
)
