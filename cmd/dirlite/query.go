package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/spf13/cobra"

	"github.com/KilimcininKorOglu/dirlite/internal/filter"
	"github.com/KilimcininKorOglu/dirlite/internal/ldap"
)

// queryOptions holds the settings of a single query run.
type queryOptions struct {
	Address    string
	BaseDN     string
	SizeLimit  int
	TimeLimit  int
	TypesOnly  bool
	Attributes []string
	Timeout    time.Duration
}

func newQueryCmd() *cobra.Command {
	opts := queryOptions{}

	cmd := &cobra.Command{
		Use:   "query [filter]",
		Short: "Search a running server",
		Long: `Bind anonymously, run one search and print the returned entries in
LDIF form. The filter uses the string representation, e.g. "(uid=alice)"
or "(&(cn=*Example)(mail=*@example.com))". It defaults to "(objectClass=*)".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filterString := "(objectClass=*)"
			if len(args) == 1 {
				filterString = args[0]
			}
			return runQuery(cmd.Context(), cmd.OutOrStdout(), opts, filterString)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Address, "address", "a", "localhost:389", wrapString("Server address"))
	flags.StringVarP(&opts.BaseDN, "base-dn", "b", "", wrapString("Search base DN"))
	flags.IntVarP(&opts.SizeLimit, "size-limit", "z", 0, wrapString("Maximum number of entries (0-255, 0 means no limit)"))
	flags.IntVar(&opts.TimeLimit, "time-limit", 0, wrapString("Search time limit in seconds (0-255, 0 means no limit)"))
	flags.BoolVar(&opts.TypesOnly, "types-only", false, wrapString("Return attribute types without values"))
	flags.StringSliceVarP(&opts.Attributes, "attributes", "A", nil, wrapString("Attributes to return, comma separated (default all)"))
	flags.DurationVar(&opts.Timeout, "timeout", 10*time.Second, wrapString("Connection timeout"))

	return cmd
}

// runQuery performs bind, search and unbind against opts.Address and
// prints the entries to out.
func runQuery(ctx context.Context, out io.Writer, opts queryOptions, filterString string) error {
	f, err := filter.Parse(filterString)
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	dialer := net.Dialer{Timeout: opts.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", opts.Address)
	if err != nil {
		return err
	}
	defer conn.Close()

	if opts.Timeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(opts.Timeout)); err != nil {
			return err
		}
	}

	bind, err := exchange(conn, &ldap.Message{MessageID: 1, Request: &ldap.BindRequest{Version: 3}})
	if err != nil {
		return fmt.Errorf("bind: %w", err)
	}
	if bind.Result == nil || bind.Result.Code != ldap.ResultSuccess {
		return fmt.Errorf("bind failed: %s", resultString(bind.Result))
	}

	search := &ldap.Message{MessageID: 2, Request: &ldap.SearchRequest{
		BaseObject: opts.BaseDN,
		Scope:      ldap.ScopeWholeSubtree,
		SizeLimit:  opts.SizeLimit,
		TimeLimit:  opts.TimeLimit,
		TypesOnly:  opts.TypesOnly,
		Filter:     f,
		Attributes: opts.Attributes,
	}}
	resp, err := exchange(conn, search)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	entries := 0
	for resp.OpTag == ldap.TagSearchResultEntry {
		printEntry(out, resp.Entry)
		entries++

		if resp, err = readResponse(conn); err != nil {
			return fmt.Errorf("search: %w", err)
		}
	}

	if resp.OpTag != ldap.TagSearchResultDone || resp.Result == nil {
		return fmt.Errorf("search: unexpected %s", ldap.OperationName(resp.OpTag))
	}
	fmt.Fprintf(out, "# result: %s (%d entries)\n", resultString(resp.Result), entries)

	// Best effort; the server closes the connection without replying.
	if data, err := (&ldap.Message{MessageID: 3, Request: &ldap.UnbindRequest{}}).Encode(); err == nil {
		conn.Write(data)
	}

	switch resp.Result.Code {
	case ldap.ResultSuccess, ldap.ResultSizeLimitExceeded, ldap.ResultTimeLimitExceeded:
		return nil
	default:
		return fmt.Errorf("search failed: %s", resultString(resp.Result))
	}
}

// exchange sends msg and reads the first response.
func exchange(conn net.Conn, msg *ldap.Message) (*ldap.Response, error) {
	data, err := msg.Encode()
	if err != nil {
		return nil, err
	}
	if _, err := conn.Write(data); err != nil {
		return nil, err
	}
	return readResponse(conn)
}

func readResponse(r io.Reader) (*ldap.Response, error) {
	packet, err := ldap.ReadPacket(r, 0)
	if err != nil {
		return nil, err
	}
	return ldap.DecodeResponse(packet)
}

// printEntry writes entry in LDIF form followed by a blank line.
func printEntry(out io.Writer, entry *ldap.SearchResultEntry) {
	fmt.Fprintf(out, "dn: %s\n", entry.ObjectName)
	for _, attr := range entry.Attributes {
		if len(attr.Values) == 0 {
			fmt.Fprintf(out, "%s:\n", attr.Type)
			continue
		}
		for _, value := range attr.Values {
			fmt.Fprintf(out, "%s: %s\n", attr.Type, value)
		}
	}
	fmt.Fprintln(out)
}

func resultString(r *ldap.Result) string {
	if r == nil {
		return "no result"
	}
	if r.DiagnosticMessage != "" {
		return fmt.Sprintf("%s: %s", r.Code, r.DiagnosticMessage)
	}
	return r.Code.String()
}
