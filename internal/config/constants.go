package config

// Version is the current smlc version.
// Set at build time via -ldflags or by writing to this file.
var Version = "0.2.0"

const SourceFileExt = ".sml"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".sml", ".sig", ".fun"}

// TrimSourceExt removes any recognized source extension from a filename.
// Returns the original string if no extension matches.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt returns true if the path ends with any recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}
