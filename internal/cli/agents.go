package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "List registered agent variants",
		Run:   runAgents,
	}
	RootCmd.AddCommand(cmd)
}

func runAgents(cmd *cobra.Command, args []string) {
	reg := buildRegistry()
	fmt.Printf("architects: %s\n", strings.Join(reg.Architects(), ", "))
	fmt.Printf("narrators:  %s\n", strings.Join(reg.Narrators(), ", "))
	fmt.Printf("editors:    %s\n", strings.Join(reg.Editors(), ", "))
	fmt.Printf("characters: %s\n", strings.Join(reg.CharacterTypes(), ", "))
}
