package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tinyrange/canonbounds/internal/ast"
)

func newCompareCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "compare EXPR1 EXPR2",
		Short: "Print LessThan, Equal or GreaterThan for two expressions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			es, err := o.parseAll(args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), o.cmp.CompareExpr(es[0], es[1]))
			return nil
		},
	}
}

func newSortCmd(o *options) *cobra.Command {
	var dedup bool
	cmd := &cobra.Command{
		Use:   "sort EXPR...",
		Short: "Print expressions in canonical order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			es, err := o.parseAll(args)
			if err != nil {
				return err
			}
			if dedup {
				es = o.cmp.Dedup(es)
			} else {
				o.cmp.Sort(es)
			}
			for _, e := range es {
				fmt.Fprintln(cmd.OutOrStdout(), ast.String(e))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dedup, "dedup", false, "drop expressions Equal to an earlier one")
	return cmd
}

func newHashCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "hash EXPR...",
		Short: "Print the fingerprint of each expression",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			es, err := o.parseAll(args)
			if err != nil {
				return err
			}
			for i, e := range es {
				fmt.Fprintf(cmd.OutOrStdout(), "%016x  %s\n", o.cmp.Fingerprint(e), args[i])
			}
			return nil
		},
	}
}
