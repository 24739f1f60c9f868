package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trigitdb/trigit/pkg/ask"
	"github.com/trigitdb/trigit/pkg/core"
	"github.com/trigitdb/trigit/pkg/model"
)

var createCmd = &cobra.Command{
	Use:   "create <org>/<db>",
	Short: "Create a database with a main branch in the local store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		org, db, found := strings.Cut(args[0], "/")
		if !found || org == "" || db == "" {
			return fmt.Errorf("want <org>/<db>, got %q", args[0])
		}
		withSchema, _ := cmd.Flags().GetBool("with-schema")
		return withLocalStore(func(ctx context.Context, eng *core.Engine) error {
			var seed []model.Triple
			if withSchema {
				seed = []model.Triple{}
			}
			if err := eng.CreateDatabase(ctx, org, db, seed); err != nil {
				return err
			}
			fmt.Printf("created %s/%s\n", org, db)
			return nil
		})
	},
}

var commitCmd = &cobra.Command{
	Use:   "commit <descriptor> <triple>...",
	Short: "Commit triple insertions to a branch in the local store",
	Long: `Commit triple insertions to a branch in the local store.

Each triple argument is "subject predicate object"; prefix with '-' to
stage a deletion instead.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := core.Resolve(args[0])
		if err != nil {
			return err
		}
		return withLocalStore(func(ctx context.Context, eng *core.Engine) error {
			info := model.CommitInfo{Author: params.author, Message: params.message}
			id, err := eng.WithTransaction(ctx, d, info, func(tc *core.Context) error {
				for _, arg := range args[1:] {
					deletion := strings.HasPrefix(arg, "-")
					t, ok := model.ParseTriple(strings.TrimPrefix(arg, "-"))
					if !ok {
						return fmt.Errorf("malformed triple %q", arg)
					}
					if deletion {
						if err := tc.Delete(t); err != nil {
							return err
						}
						continue
					}
					if err := tc.Insert(t); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		})
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <descriptor> <pattern>",
	Short: "Evaluate a triple pattern against a graph in the local store",
	Long: `Evaluate a triple pattern against a graph in the local store.

The pattern is "subject predicate object" with '?name' terms as variables,
e.g. 'trigit ask acme/crm/local/branch/main "?s rdf:type ex:Person"'.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := core.Resolve(args[0])
		if err != nil {
			return err
		}
		t, ok := model.ParseTriple(args[1])
		if !ok {
			return fmt.Errorf("malformed pattern %q", args[1])
		}
		return withLocalStore(func(ctx context.Context, eng *core.Engine) error {
			view, err := eng.ViewOf(ctx, d)
			if err != nil {
				return err
			}
			seq := ask.Ask(ctx, view, ask.P(t.Subject, t.Predicate, t.Object))
			n := 0
			for seq.Next() {
				fmt.Println(formatBinding(seq.Binding()))
				n++
			}
			if err := seq.Err(); err != nil {
				return err
			}
			fmt.Printf("%d bindings\n", n)
			return nil
		})
	},
}

var logCmd = &cobra.Command{
	Use:   "log <descriptor>",
	Short: "List the commit history of a branch in the local store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := core.Resolve(args[0])
		if err != nil {
			return err
		}
		return withLocalStore(func(ctx context.Context, eng *core.Engine) error {
			commits, err := eng.Log(ctx, d)
			if err != nil {
				return err
			}
			for _, c := range commits {
				fmt.Printf("%s %s <%s> %s\n", c.ID, c.Timestamp.Format("2006-01-02T15:04:05Z"), c.Author, c.Message)
			}
			return nil
		})
	},
}

func formatBinding(b ask.Binding) string {
	parts := make([]string, 0, len(b))
	for k, v := range b {
		parts = append(parts, k+"="+v)
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}

func init() {
	createCmd.Flags().Bool("with-schema", false, "create an (empty) schema graph alongside the main branch")
	commitCmd.Flags().StringVar(&params.author, "author", "anonymous", "commit author")
	commitCmd.Flags().StringVar(&params.message, "message", "", "commit message")
	rootCmd.AddCommand(createCmd, commitCmd, askCmd, logCmd)
}
