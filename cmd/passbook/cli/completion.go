package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/meigma/passbook"
)

// completeBundleMembers suggests member names from inside a local bundle for
// commands like `cat` that take a bundle path followed by a member name.
func completeBundleMembers(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return []string{"pkpass"}, cobra.ShellCompDirectiveFilterFileExt
	case 1:
	default:
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	a, err := passbook.OpenArchiveFile(args[0], passbook.DefaultReadLimits)
	if err != nil {
		// Don't show error to user during completion - just return no suggestions
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer a.Close()

	entries, err := a.List()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var completions []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name, toComplete) {
			completions = append(completions, entry.Name)
		}
	}

	// NoFileComp prevents falling back to local file completion
	return completions, cobra.ShellCompDirectiveNoFileComp
}
