package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KilimcininKorOglu/dirlite/internal/directory"
	"github.com/KilimcininKorOglu/dirlite/internal/filter"
	"github.com/KilimcininKorOglu/dirlite/internal/ldap"
)

// ErrStoreUnavailable is returned by a search whose record store could not be read.
var ErrStoreUnavailable = errors.New("server: record store unavailable")

// allAttributes selects every exposed attribute in an attribute list.
const allAttributes = "*"

// SearchResult summarizes a completed search.
type SearchResult struct {
	// Entries is the number of entries sent.
	Entries int
	// Code is the result code for the SearchResultDone message.
	Code ldap.ResultCode
}

// Truncated reports whether a limit cut the result set short.
func (r SearchResult) Truncated() bool {
	return r.Code == ldap.ResultSizeLimitExceeded || r.Code == ldap.ResultTimeLimitExceeded
}

// entryFunc receives each matching entry as soon as it is built.
type entryFunc func(entry *ldap.SearchResultEntry) error

// search evaluates req against the store snapshot, passing matches to
// emit in store order. The scan stops when the effective size or time
// limit is reached. An error from emit aborts the search and is returned.
func (s *Server) search(ctx context.Context, req *ldap.SearchRequest, emit entryFunc) (SearchResult, error) {
	result := SearchResult{Code: ldap.ResultSuccess}

	sizeLimit := effectiveLimit(req.SizeLimit, s.config.MaxSizeLimit)
	timeLimit := effectiveLimit(req.TimeLimit, s.config.MaxTimeLimit)

	var deadline time.Time
	if timeLimit > 0 {
		deadline = s.now().Add(time.Duration(timeLimit) * time.Second)
	}

	records, err := s.store.Records(ctx)
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	selection := newAttributeSelection(req.Attributes)

	for i := range records {
		if !deadline.IsZero() && s.now().After(deadline) {
			result.Code = ldap.ResultTimeLimitExceeded
			return result, nil
		}

		if !filter.Matches(req.Filter, records[i]) {
			continue
		}

		// One more match than the limit allows means the result was truncated.
		if sizeLimit > 0 && result.Entries >= sizeLimit {
			result.Code = ldap.ResultSizeLimitExceeded
			return result, nil
		}

		entry := s.buildEntry(&records[i], selection, req.TypesOnly)
		if err := emit(entry); err != nil {
			return result, err
		}
		result.Entries++
	}

	return result, nil
}

// buildEntry converts a record into a search result entry.
func (s *Server) buildEntry(record *directory.Record, selection attributeSelection, typesOnly bool) *ldap.SearchResultEntry {
	entry := &ldap.SearchResultEntry{
		ObjectName: entryDN(record.UserID, s.config.BaseDN),
	}

	for _, name := range []string{directory.AttrCommonName, directory.AttrMail} {
		if !selection.includes(name) {
			continue
		}
		attr := ldap.Attribute{Type: name}
		if !typesOnly {
			value, _ := record.Attribute(name)
			attr.Values = [][]byte{value}
		}
		entry.Attributes = append(entry.Attributes, attr)
	}

	return entry
}

// entryDN names an entry "uid=<uid>", followed by ",<baseDN>" when a base
// DN is configured.
func entryDN(uid []byte, baseDN string) string {
	if baseDN == "" {
		return "uid=" + string(uid)
	}
	return "uid=" + string(uid) + "," + baseDN
}

// effectiveLimit combines a client-requested limit with a server cap.
// Zero means "no limit" on either side.
func effectiveLimit(requested, limit int) int {
	switch {
	case limit <= 0:
		return requested
	case requested <= 0:
		return limit
	case requested < limit:
		return requested
	default:
		return limit
	}
}

// attributeSelection is the set of attribute names a search asked for.
// A nil selection returns every exposed attribute.
type attributeSelection map[string]struct{}

func newAttributeSelection(names []string) attributeSelection {
	if len(names) == 0 {
		return nil
	}
	sel := make(attributeSelection, len(names))
	for _, name := range names {
		if name == allAttributes {
			return nil
		}
		sel[strings.ToLower(name)] = struct{}{}
	}
	return sel
}

func (a attributeSelection) includes(name string) bool {
	if a == nil {
		return true
	}
	_, ok := a[name]
	return ok
}
