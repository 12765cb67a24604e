// Package objscan lists the sections of object files through the owned
// llvm wrappers, one backend session per worker, with an optional disk
// cache keyed by file content.
package objscan

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"llbridge/internal/session"
	"llbridge/internal/trace"
)

// Digest is a SHA-256 of file or section content.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Short is the first 12 hex digits, enough to tell sections apart.
func (d Digest) Short() string { return hex.EncodeToString(d[:6]) }

// Section is one entry of an object file's section table.
type Section struct {
	Name    string `msgpack:"name"`
	Size    uint64 `msgpack:"size"`
	Address uint64 `msgpack:"addr"`
	Digest  Digest `msgpack:"digest"` // of the file contents, zero for zero-fill
}

// Result is the scan of one file.
type Result struct {
	Path     string
	Format   string
	Bytes    int
	Digest   Digest
	Sections []Section
	Cached   bool
	Err      error
}

// TotalSize sums the section sizes.
func (r *Result) TotalSize() uint64 {
	var n uint64
	for _, s := range r.Sections {
		n += s.Size
	}
	return n
}

// ScanObject walks the sections of data with the session's backend. Every
// wrapper it opens is released before it returns.
func ScanObject(s *session.Session, path string, data []byte) (*Result, error) {
	sp := trace.Begin(s.Tracer(), trace.ScopeFile, "scan", 0).WithExtra("path", path)
	obj, err := s.OpenObject(path, data)
	if err != nil {
		sp.End("rejected")
		return nil, err
	}
	defer obj.Release()

	res := &Result{
		Path:   path,
		Format: s.Backend().ObjectFormat(obj.Raw()),
		Bytes:  len(data),
		Digest: sha256.Sum256(data),
	}

	it := obj.Sections()
	defer it.Release()
	for ; !it.AtEnd(); it.Next() {
		sec := Section{Name: it.Name(), Size: it.Size(), Address: it.Address()}
		if contents := it.Contents(); len(contents) > 0 {
			sec.Digest = sha256.Sum256(contents)
		}
		res.Sections = append(res.Sections, sec)
	}
	sp.WithExtra("sections", fmt.Sprint(len(res.Sections))).End(res.Format)
	return res, nil
}
