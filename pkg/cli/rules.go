package cli

import (
	"flag"
	"fmt"

	"github.com/platinummonkey/protocheck/pkg/checker"
	"github.com/platinummonkey/protocheck/pkg/checker/rules"
)

// newRulesCommand creates the rules listing command
func newRulesCommand() *Command {
	fs := flag.NewFlagSet("rules", flag.ExitOnError)

	return &Command{
		Name:        "rules",
		Description: "List available rules",
		Flags:       fs,
		Run: func(args []string) error {
			if err := fs.Parse(args); err != nil {
				return err
			}
			return listRules()
		},
	}
}

func listRules() error {
	registry := checker.NewRegistry()
	rules.RegisterDefaultRules(registry)

	all := registry.All()
	fmt.Printf("Available rules (%d):\n\n", len(all))

	for _, group := range []checker.Group{checker.GroupLRO, checker.GroupRevisions} {
		grouped := registry.ByGroup(group)
		if len(grouped) == 0 {
			continue
		}
		fmt.Printf("%s:\n", group)
		for _, rule := range grouped {
			fmt.Printf("  - %-30s [%s]\n    %s\n", rule.Name(), rule.Severity(), rule.Description())
		}
		fmt.Println()
	}

	return nil
}
