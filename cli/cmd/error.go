package cmd

import "github.com/ardnew/molang/lang"

// Command errors share [lang.Error] so that callers log and match them the
// same way as engine errors. They carry no kind and match by message.
var (
	ErrJSONMarshal = lang.NewError("marshal JSON")
	ErrYAMLMarshal = lang.NewError("marshal YAML")
	ErrWriteConfig = lang.NewError("write configuration file")
	ErrWriteResult = lang.NewError("write result")
	ErrFileExists  = lang.NewError("file exists (use --force to overwrite)")
	ErrOpenSource  = lang.NewError("open source")
	ErrNoInput     = lang.NewError("no input")
)
