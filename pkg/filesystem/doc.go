// Package filesystem walks project trees with the ignore rules a Python
// project usually wants.
//
// # Overview
//
//   - Skips virtualenvs, caches and VCS directories by name
//   - Skips hidden entries unless asked not to
//   - Optionally honors the root .gitignore
//   - Always skips __pycache__
//
// # Usage
//
// Collect every Python file below a root:
//
//	keys, err := filesystem.CollectFiles(".", filesystem.WalkOptions{
//	    RespectGitignore: true,
//	}, []string{".py"})
//
// Custom walk:
//
//	err := filesystem.Walk(".", filesystem.WalkOptions{
//	    IgnorePatterns: []string{"*_pb2.py"},
//	}, func(path, rel string, d fs.DirEntry) error {
//	    fmt.Println(rel)
//	    return nil
//	})
package filesystem
