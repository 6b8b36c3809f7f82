package errors

// Convenience functions for common error patterns

// Config errors

func ConfigInvalid(path string, cause error) *SiteError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "invalid configuration "+path).
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *SiteError {
	return New(CategoryValidation, SeverityFatal, "validation failed for "+field+": "+reason).
		WithContext("field", field).
		WithContext("reason", reason)
}

// Build pipeline errors

// SourceReadError reports a source document that could not be opened, read or decoded.
func SourceReadError(path string, cause error) *SiteError {
	return Wrap(cause, CategorySourceRead, SeverityFatal, "cannot read source "+path).
		WithContext("path", path)
}

// CompileError reports a document the Markdown engine or front-matter parser rejected.
func CompileError(path string, cause error) *SiteError {
	return Wrap(cause, CategoryCompile, SeverityFatal, "cannot compile "+path).
		WithContext("path", path)
}

// TemplateError reports a missing, malformed or unrenderable template.
func TemplateError(name string, cause error) *SiteError {
	return Wrap(cause, CategoryTemplate, SeverityFatal, "template "+name+" failed").
		WithContext("template", name)
}

// AssetCopyError reports a static asset that could not be placed in the output tree.
func AssetCopyError(path string, cause error) *SiteError {
	return Wrap(cause, CategoryAssetCopy, SeverityFatal, "cannot place asset "+path).
		WithContext("path", path)
}

// OutputError reports a failure creating or writing into the output directory.
func OutputError(path string, cause error) *SiteError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "cannot write "+path).
		WithContext("path", path)
}

// Internal errors

func InternalError(message string, cause error) *SiteError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
