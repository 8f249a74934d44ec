package util

// Options holds the fully-resolved compiler configuration: the merge of
// defaults, an optional --config YAML file and the command-line flags
// that override it (flags always win). MiniC targets a single, fixed
// ARM32 backend, so there is no multi-target or thread-count setting.
type Options struct {
	Src     string `yaml:"src"`     // path to source file; "" reads stdin
	Out     string `yaml:"out"`     // path to output file; "" writes stdout
	Mode    string `yaml:"mode"`    // "ast", "ir", "asm" (default) or "llvm"
	Verbose bool   `yaml:"verbose"` // emit IR text as comments alongside ARM32 assembly
	KeepGoing bool `yaml:"keepGoing"` // degrade non-constant array dimensions to 1 instead of failing
}

// Default returns the zero-value Options with its documented defaults
// filled in.
func Default() Options {
	return Options{Mode: "asm"}
}

// Merge overlays non-zero fields of o2 onto o (flags overlay file
// config). Used to apply --config file contents, then CLI flags, in order.
func (o Options) Merge(o2 Options) Options {
	if o2.Src != "" {
		o.Src = o2.Src
	}
	if o2.Out != "" {
		o.Out = o2.Out
	}
	if o2.Mode != "" {
		o.Mode = o2.Mode
	}
	if o2.Verbose {
		o.Verbose = true
	}
	if o2.KeepGoing {
		o.KeepGoing = true
	}
	return o
}
