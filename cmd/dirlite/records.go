package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KilimcininKorOglu/dirlite/internal/directory"
)

func newCheckRecordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-records <file>",
		Short: "Validate a records file and print its record count",
		Long: `Load a records file the way the server does and report how many
records it holds. Records without a uid and duplicate uids are reported as
warnings; they are still served.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := directory.LoadFile(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			errOut := cmd.ErrOrStderr()
			list, _ := cmd.Flags().GetBool("list")

			seen := make(map[string]int, len(records))
			for i, r := range records {
				line := i + 1
				uid := string(r.UserID)

				switch first, dup := seen[uid]; {
				case uid == "":
					fmt.Fprintf(errOut, "warning: line %d: empty uid\n", line)
				case dup:
					fmt.Fprintf(errOut, "warning: line %d: uid %q already used on line %d\n", line, uid, first)
				default:
					seen[uid] = line
				}

				if list {
					fmt.Fprintf(out, "uid=%s\tcn=%s\tmail=%s\n", r.UserID, r.CommonName, r.Mail)
				}
			}

			fmt.Fprintf(out, "%d records\n", len(records))
			return nil
		},
	}

	cmd.Flags().BoolP("list", "l", false, "Print every record")
	return cmd
}
