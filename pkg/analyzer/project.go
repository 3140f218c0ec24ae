package analyzer

// Project represents an analyzed source tree
type Project struct {
	RootPath string
	Files    []*FileRecord // sorted by Key
	Skipped  int           // files that failed to parse
}

// FileRecord holds the imports extracted from one discovered file
type FileRecord struct {
	Key       string // project-relative, forward slashes
	Path      string // filesystem path
	Modules   []string
	Functions []FunctionImport
	Parsed    bool // false when the file could not be read or parsed
}

// FunctionImport is a named import: `from Module import Symbol`
type FunctionImport struct {
	Module string
	Symbol string
}

// Keys returns the key of every discovered file, in order.
func (p *Project) Keys() []string {
	keys := make([]string, len(p.Files))
	for i, f := range p.Files {
		keys[i] = f.Key
	}
	return keys
}

// File returns the record for key, or nil.
func (p *Project) File(key string) *FileRecord {
	for _, f := range p.Files {
		if f.Key == key {
			return f
		}
	}
	return nil
}

// Resolution maps every discovered file's imports onto other discovered files
type Resolution struct {
	Discovered []string
	Files      []*ResolvedFile
}

// ResolvedFile lists the in-project targets of one file's imports
type ResolvedFile struct {
	Key       string
	Modules   []string // target file keys, one entry per match
	Functions []ResolvedFunction
}

// ResolvedFunction is a named import resolved to the file that provides it
type ResolvedFunction struct {
	File   string
	Symbol string
}
