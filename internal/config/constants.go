package config

// Version is the current Weave version.
// Set at build time by the release script via -ldflags or by writing to this file.
var Version = "0.3.1"

const SourceFileExt = ".wv"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".wv", ".weave"}

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

// EntrypointNames are the default program roots, tried in order when the
// project file does not name one.
var EntrypointNames = []string{"main", "Main"}
