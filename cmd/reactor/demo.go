package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reactor/examples/counter"
	"github.com/vango-dev/reactor/pkg/host"
	"github.com/vango-dev/reactor/pkg/render"
)

func demoCmd(g *globals) *cobra.Command {
	var (
		clicks  int
		showOps bool
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Render the counter app and click it",
		Long: `Render the counter app into an in-memory tree, click its button
the given number of times and print the resulting HTML.

Examples:
  reactor demo
  reactor demo --clicks=3
  reactor demo --clicks=1 --ops`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if clicks < 0 {
				return fmt.Errorf("--clicks must not be negative")
			}
			_, logger, err := g.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			tree := host.NewTree()
			inst, err := render.New(tree, render.WithLogger(logger)).Render(counter.New(logger), tree.Root())
			if err != nil {
				return err
			}
			defer inst.Unmount()

			buttons := tree.Find(func(n *host.Node) bool { return n.Props["id"] == "increment" })
			if len(buttons) == 0 {
				return fmt.Errorf("counter has no increment button")
			}
			tree.ResetOps()
			for range clicks {
				if err := tree.Dispatch(buttons[0].ID, "click"); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if showOps {
				for _, op := range tree.Ops() {
					fmt.Fprintln(out, op)
				}
			}
			fmt.Fprintln(out, tree.HTML())
			return nil
		},
	}

	cmd.Flags().IntVarP(&clicks, "clicks", "n", 0, "Number of clicks")
	cmd.Flags().BoolVar(&showOps, "ops", false, "Print the host operations the clicks caused")

	return cmd
}
