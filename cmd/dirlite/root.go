package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// wrapWidth is the column at which flag help text is wrapped.
const wrapWidth = 50

// newRootCmd builds the command tree. A fresh tree is built per run so
// flag state never leaks between invocations.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dirlite",
		Short: "minimal LDAP directory server",
		Long: fmt.Sprintf(`dirlite (v%s)

A minimal directory server answering LDAP Bind, Search and Unbind requests
from a flat records file of "cn;uid;mail" lines.`, version),
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newQueryCmd())
	root.AddCommand(newCheckRecordsCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// wrapString wraps text at wrapWidth characters for flag help.
func wrapString(text string) string {
	var lines []string
	var line strings.Builder

	for _, word := range strings.Fields(text) {
		if line.Len() > 0 && line.Len()+1+len(word) > wrapWidth {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}

	return strings.Join(lines, "\n")
}
