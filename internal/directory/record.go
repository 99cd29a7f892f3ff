// Package directory provides the read-only record store searched by the
// dirlite server.
package directory

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// Attribute names under which record fields are exposed.
const (
	AttrCommonName = "cn"
	AttrUserID     = "uid"
	AttrMail       = "mail"
)

// FieldSeparator separates the fields of a record line.
const FieldSeparator = ';'

// maxLineSize bounds a single record line.
const maxLineSize = 1 << 20

// Record is one directory entry. Field values are opaque bytes and are
// never modified after loading.
type Record struct {
	CommonName []byte
	UserID     []byte
	Mail       []byte
}

// Attribute returns the field exposed under name. Names are matched
// literally; anything other than cn, uid and mail is not exposed.
func (r Record) Attribute(name string) ([]byte, bool) {
	switch name {
	case AttrCommonName:
		return r.CommonName, true
	case AttrUserID:
		return r.UserID, true
	case AttrMail:
		return r.Mail, true
	default:
		return nil, false
	}
}

// ParseRecord parses one "cn;uid;mail" line. A trailing carriage return is
// stripped, missing trailing fields are empty and fields past the third are
// ignored.
func ParseRecord(line []byte) Record {
	line = bytes.TrimSuffix(line, []byte{'\r'})

	fields := bytes.SplitN(line, []byte{FieldSeparator}, 4)
	var r Record
	if len(fields) > 0 {
		r.CommonName = clone(fields[0])
	}
	if len(fields) > 1 {
		r.UserID = clone(fields[1])
	}
	if len(fields) > 2 {
		r.Mail = clone(fields[2])
	}
	return r
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// ReadRecords reads one record per line, preserving order. Blank lines are
// skipped.
func ReadRecords(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var records []Record
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(bytes.TrimSuffix(line, []byte{'\r'})) == 0 {
			continue
		}
		records = append(records, ParseRecord(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("directory: read line %d: %w", lineNo+1, err)
	}
	return records, nil
}
